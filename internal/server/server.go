// Package server maps HTTP endpoints onto the chat pipeline and the
// history store.
package server

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"github.com/healio/chat-backend/internal/chat"
	"github.com/healio/chat-backend/internal/config"
	"github.com/healio/chat-backend/internal/history"
)

// Server is the backend HTTP server. The completion client and history
// store are injected so tests can substitute stubs; store may be nil when
// chat history is not configured.
type Server struct {
	cfg        *config.Config
	completion *chat.Client
	store      history.Store
	httpServer *http.Server
}

// New constructs a Server from the given config and collaborators.
func New(cfg *config.Config, completion *chat.Client, store history.Store) *Server {
	s := &Server{cfg: cfg, completion: completion, store: store}

	r := mux.NewRouter()
	r.HandleFunc("/conversation", s.handleConversation).Methods(http.MethodPost)
	r.HandleFunc("/frontend_settings", s.handleFrontendSettings).Methods(http.MethodGet)
	r.HandleFunc("/history/generate", s.handleHistoryGenerate).Methods(http.MethodPost)

	// The user details API is also called cross-origin. OPTIONS is routed
	// alongside each method because mux only runs subrouter middleware on
	// matched routes; corsMiddleware answers the preflight itself.
	user := r.PathPrefix("/api/user").Subrouter()
	user.Use(corsMiddleware)
	user.HandleFunc("/details/{userId}", s.handleGetUserDetails).Methods(http.MethodGet, http.MethodOptions)
	user.HandleFunc("/details/{userId}", s.handleUpdateUserDetails).Methods(http.MethodPost)

	r.HandleFunc("/favicon.ico", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(cfg.StaticDir, "favicon.ico"))
	})
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/",
		http.FileServer(http.Dir(filepath.Join(cfg.StaticDir, "assets")))))
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(cfg.StaticDir, "index.html"))
	}).Methods(http.MethodGet)

	var handler http.Handler = r
	handler = loggingMiddleware(handler)
	handler = recoveryMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
		// No WriteTimeout: streamed responses last as long as model
		// generation does, which has no fixed budget.
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Start begins listening and blocks until the server is stopped.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Handler returns the underlying http.Handler (for use in tests with
// httptest.NewServer).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

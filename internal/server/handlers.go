package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/healio/chat-backend/internal/apierror"
	"github.com/healio/chat-backend/internal/chat"
	"github.com/healio/chat-backend/internal/history"
	"github.com/healio/chat-backend/internal/httputil"
)

const ndjsonContentType = "application/json-lines"

// handleConversation serves POST /conversation.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		apierror.WriteJSON(w, http.StatusUnsupportedMediaType, "request must be json")
		return
	}
	var req chat.ConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.WriteJSON(w, http.StatusBadRequest, "malformed request body")
		return
	}
	s.runConversation(w, r, req)
}

// runConversation is the pipeline shared by /conversation and
// /history/generate: shape, submit, then stream or aggregate.
func (s *Server) runConversation(w http.ResponseWriter, r *http.Request, req chat.ConversationRequest) {
	var meta chat.HistoryMetadata
	if req.HistoryMetadata != nil {
		meta = *req.HistoryMetadata
	}

	if s.cfg.OpenAI.Stream {
		stream, err := s.completion.Stream(r.Context(), req.Messages)
		if err != nil {
			// Nothing flushed yet, so a clean JSON error is still possible.
			slog.Error("completion request failed", "error", err)
			apierror.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", ndjsonContentType)
		if err := chat.WriteNDJSON(w, stream, meta); err != nil {
			// Frames already reached the client; the truncated stream is
			// the only failure signal it gets. Log the full context here.
			slog.Error("stream interrupted after partial output", "error", err,
				"conversation_id", meta.ConversationID)
		}
		return
	}

	resp, err := s.completion.Complete(r.Context(), req.Messages)
	if err != nil {
		slog.Error("completion request failed", "error", err)
		apierror.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chat.FrameFromResponse(resp, meta))
}

// handleHistoryGenerate serves POST /history/generate: persist the latest
// user message (creating the conversation and its title on first use), then
// run the shared conversation pipeline with the conversation id attached.
func (s *Server) handleHistoryGenerate(w http.ResponseWriter, r *http.Request) {
	user := httputil.ExtractUserDetails(r)

	var req chat.ConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.WriteJSON(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if s.store == nil {
		apierror.WriteJSON(w, http.StatusInternalServerError, "chat history is not configured or not working")
		return
	}

	if len(req.Messages) == 0 || req.Messages[len(req.Messages)-1].Role != chat.RoleUser {
		apierror.WriteJSON(w, http.StatusInternalServerError, "no user message found")
		return
	}
	last := req.Messages[len(req.Messages)-1]

	ctx := r.Context()
	meta := chat.HistoryMetadata{}
	conversationID := req.ConversationID
	if conversationID == "" {
		title := s.completion.GenerateTitle(ctx, req.Messages)
		conv, err := s.store.CreateConversation(ctx, user.PrincipalID, title)
		if err != nil {
			slog.Error("failed to create conversation", "error", err, "user", user.PrincipalID)
			apierror.WriteError(w, err)
			return
		}
		conversationID = conv.ID
		meta.Title = title
		meta.Date = conv.CreatedAt.Format(time.RFC3339)
	}

	_, err := s.store.CreateMessage(ctx, conversationID, history.StoredMessage{
		UserID:  user.PrincipalID,
		Role:    last.Role,
		Content: last.Content,
	})
	if errors.Is(err, history.ErrConversationNotFound) {
		apierror.WriteJSON(w, http.StatusInternalServerError,
			fmt.Sprintf("conversation not found for the given conversation ID: %s.", conversationID))
		return
	}
	if err != nil {
		slog.Error("failed to append message", "error", err, "conversation_id", conversationID)
		apierror.WriteError(w, err)
		return
	}

	meta.ConversationID = conversationID
	req.HistoryMetadata = &meta
	s.runConversation(w, r, req)
}

// handleFrontendSettings serves GET /frontend_settings.
func (s *Server) handleFrontendSettings(w http.ResponseWriter, _ *http.Request) {
	chatLogo := s.cfg.UI.ChatLogo
	if chatLogo == "" {
		chatLogo = s.cfg.UI.Logo
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"auth_enabled":     s.cfg.AuthEnabled,
		"feedback_enabled": s.cfg.FeedbackEnabled && s.cfg.HistoryEnabled(),
		"ui": map[string]any{
			"title":             s.cfg.UI.Title,
			"logo":              s.cfg.UI.Logo,
			"chat_logo":         chatLogo,
			"chat_title":        s.cfg.UI.ChatTitle,
			"chat_description":  s.cfg.UI.ChatDescription,
			"show_share_button": s.cfg.UI.ShowShareButton,
			"favicon":           s.cfg.UI.Favicon,
		},
		"sanitize_answer": s.cfg.SanitizeAnswer,
	})
}

// handleGetUserDetails serves GET /api/user/details/{userId}. An unknown
// user gets a default empty profile created and returned with 201.
func (s *Server) handleGetUserDetails(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if s.store == nil {
		apierror.WriteJSON(w, http.StatusInternalServerError, "database not configured")
		return
	}

	p, err := s.store.GetProfile(r.Context(), userID)
	if errors.Is(err, history.ErrProfileNotFound) {
		p = history.NewProfile(userID)
		if err := s.store.UpsertProfile(r.Context(), p); err != nil {
			slog.Error("failed to create profile", "error", err, "user", userID)
			apierror.WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
		return
	}
	if err != nil {
		slog.Error("failed to get profile", "error", err, "user", userID)
		apierror.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdateUserDetails serves POST /api/user/details/{userId}, merging
// the supplied fields into the existing or a newly created document.
func (s *Server) handleUpdateUserDetails(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		apierror.WriteJSON(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if s.store == nil {
		apierror.WriteJSON(w, http.StatusInternalServerError, "database not configured")
		return
	}

	p, err := s.store.GetProfile(r.Context(), userID)
	if errors.Is(err, history.ErrProfileNotFound) {
		p = history.NewProfile(userID)
	} else if err != nil {
		slog.Error("failed to get profile", "error", err, "user", userID)
		apierror.WriteError(w, err)
		return
	}
	for k, v := range fields {
		p[k] = v
	}

	if err := s.store.UpsertProfile(r.Context(), p); err != nil {
		slog.Error("failed to update profile", "error", err, "user", userID)
		apierror.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User details updated successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

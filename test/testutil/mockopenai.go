// Package testutil provides a mock OpenAI-compatible completion server for
// tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"
)

// MockOpenAI is an httptest.Server that simulates an Azure-OpenAI-style
// chat completions endpoint, serving both blocking and streamed responses.
type MockOpenAI struct {
	Server *httptest.Server

	// Answer is streamed word by word (streaming) or returned whole
	// (blocking).
	Answer string
	// TitleAnswer, when non-empty, is returned as the completion content
	// for title-generation requests (detected by the fixed instruction in
	// the last message).
	TitleAnswer string
	// FailStatus, when non-zero, makes every completion request fail with
	// this HTTP status and FailMessage.
	FailStatus  int
	FailMessage string
	// FailTitle makes only title-generation requests fail.
	FailTitle bool

	// LastRequest captures the most recent request body parsed.
	LastRequest map[string]any
	// Requests counts completion requests served.
	Requests int
}

// NewMockOpenAI creates and starts a mock completion server.
func NewMockOpenAI(answer string) *MockOpenAI {
	m := &MockOpenAI{Answer: answer}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// Close shuts down the mock server.
func (m *MockOpenAI) Close() {
	m.Server.Close()
}

// URL returns the base URL of the mock server.
func (m *MockOpenAI) URL() string {
	return m.Server.URL
}

func (m *MockOpenAI) handle(w http.ResponseWriter, r *http.Request) {
	// The Azure client posts to /openai/deployments/{model}/chat/completions.
	if !strings.HasSuffix(r.URL.Path, "/chat/completions") || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	m.LastRequest = body
	m.Requests++

	isTitle := m.isTitleRequest(body)

	if m.FailStatus != 0 || (m.FailTitle && isTitle) {
		status := m.FailStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		m.writeError(w, status)
		return
	}

	if stream, _ := body["stream"].(bool); stream {
		m.writeStreaming(w)
		return
	}

	answer := m.Answer
	if isTitle && m.TitleAnswer != "" {
		answer = m.TitleAnswer
	}
	m.writeBlocking(w, answer)
}

func (m *MockOpenAI) isTitleRequest(body map[string]any) bool {
	msgs, _ := body["messages"].([]any)
	if len(msgs) == 0 {
		return false
	}
	last, _ := msgs[len(msgs)-1].(map[string]any)
	content, _ := last["content"].(string)
	return strings.HasPrefix(content, "Summarize the conversation so far")
}

func (m *MockOpenAI) writeError(w http.ResponseWriter, status int) {
	msg := m.FailMessage
	if msg == "" {
		msg = "mock upstream failure"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "invalid_request_error",
		},
	})
}

func (m *MockOpenAI) writeBlocking(w http.ResponseWriter, answer string) {
	resp := map[string]any{
		"id":      "chatcmpl-mock",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   "mock-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": answer},
				"finish_reason": "stop",
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// writeStreaming emits one chunk per word of Answer, then a usage-style
// terminal chunk with no choices, then [DONE]. ChunkCount returns how many
// chunks that is in total.
func (m *MockOpenAI) writeStreaming(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, hasFlusher := w.(http.Flusher)

	words := strings.Fields(m.Answer)
	if len(words) == 0 {
		words = []string{m.Answer}
	}
	for i, word := range words {
		content := word
		if i > 0 {
			content = " " + word
		}
		delta := map[string]any{"content": content}
		if i == 0 {
			delta["role"] = "assistant"
		}
		chunk := map[string]any{
			"id":      "chatcmpl-mock",
			"object":  "chat.completion.chunk",
			"created": time.Now().Unix(),
			"model":   "mock-model",
			"choices": []map[string]any{
				{"index": 0, "delta": delta},
			},
		}
		data, _ := json.Marshal(chunk)
		fmt.Fprintf(w, "data: %s\n\n", data)
		if hasFlusher {
			flusher.Flush()
		}
	}

	// Terminal chunk carrying usage only, no choices.
	endChunk := map[string]any{
		"id":      "chatcmpl-mock",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   "mock-model",
		"choices": []map[string]any{},
		"usage":   map[string]any{"total_tokens": len(words)},
	}
	data, _ := json.Marshal(endChunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
	fmt.Fprintf(w, "data: [DONE]\n\n")
	if hasFlusher {
		flusher.Flush()
	}
}

// ChunkCount returns the number of chunks a streamed Answer produces,
// including the terminal no-choices chunk.
func (m *MockOpenAI) ChunkCount() int {
	words := strings.Fields(m.Answer)
	if len(words) == 0 {
		words = []string{m.Answer}
	}
	return len(words) + 1
}

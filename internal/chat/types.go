// Package chat wraps the hosted completion API: request shaping, the
// streaming response pipeline, non-streaming aggregation, and title
// generation.
package chat

// Chat message roles as they appear on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one chat message exchanged with the browser client. Only role
// and content cross the provider boundary; anything else the client attaches
// is discarded during shaping.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryMetadata ties outgoing frames to a stored conversation so the
// client can associate streamed tokens without a separate round trip.
type HistoryMetadata struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Title          string `json:"title,omitempty"`
	Date           string `json:"date,omitempty"`
}

// ConversationRequest is the body of POST /conversation and
// POST /history/generate.
type ConversationRequest struct {
	Messages        []Message        `json:"messages"`
	ConversationID  string           `json:"conversation_id,omitempty"`
	HistoryMetadata *HistoryMetadata `json:"history_metadata,omitempty"`
}

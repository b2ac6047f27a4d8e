// Package history persists conversations, messages, and user-profile
// documents. The backing document database is opaque to the rest of the
// service; handlers depend on Store only.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConversationNotFound = errors.New("conversation does not exist")
	ErrProfileNotFound      = errors.New("user profile does not exist")
)

// Conversation is one stored conversation record.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StoredMessage is one chat message appended to a conversation.
type StoredMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is a schemaless user-details document. Fixed keys are "id",
// "userId", and "answers"; POST /api/user/details merges arbitrary extra
// fields into it.
type Profile map[string]any

// NewProfile builds the default empty profile document for a user.
func NewProfile(userID string) Profile {
	return Profile{
		"id":      uuid.NewString(),
		"userId":  userID,
		"answers": []any{},
	}
}

// Store is the history-store contract. Implementations must return the
// package's typed errors for missing entities so callers never match on
// message text.
type Store interface {
	CreateConversation(ctx context.Context, userID, title string) (Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (Conversation, error)
	// CreateMessage appends a message to an existing conversation and
	// returns ErrConversationNotFound when there is none.
	CreateMessage(ctx context.Context, conversationID string, msg StoredMessage) (StoredMessage, error)
	Messages(ctx context.Context, conversationID string) ([]StoredMessage, error)

	GetProfile(ctx context.Context, userID string) (Profile, error)
	UpsertProfile(ctx context.Context, p Profile) error
}

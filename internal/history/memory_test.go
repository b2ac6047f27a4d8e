package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	conv, err := store.CreateConversation(ctx, "user-1", "First Chat")
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "user-1", conv.UserID)
	assert.Equal(t, "First Chat", conv.Title)
	assert.False(t, conv.CreatedAt.IsZero())

	got, err := store.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv, got)

	msg, err := store.CreateMessage(ctx, conv.ID, StoredMessage{
		UserID:  "user-1",
		Role:    "user",
		Content: "hello",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)

	msgs, err := store.Messages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
}

func TestMemoryStore_CreateMessageUnknownConversation(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.CreateMessage(context.Background(), "missing", StoredMessage{Role: "user", Content: "hi"})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestMemoryStore_ProfileLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.GetProfile(ctx, "user-1")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	p := NewProfile("user-1")
	require.NoError(t, store.UpsertProfile(ctx, p))

	got, err := store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, p["id"], got["id"])
	assert.Equal(t, "user-1", got["userId"])
	assert.Empty(t, got["answers"])

	// Mutating the returned document must not leak into the store.
	got["answers"] = []any{"sneaky"}
	again, err := store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, again["answers"])
}

func TestNewProfile_Defaults(t *testing.T) {
	p := NewProfile("abc")
	assert.NotEmpty(t, p["id"])
	assert.Equal(t, "abc", p["userId"])
	assert.Equal(t, []any{}, p["answers"])
}

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// conversationDoc is the stored JSON form of a conversation. Messages are
// embedded so an append is a single read-modify-write of one document.
type conversationDoc struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Title     string          `json:"title"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Messages  []StoredMessage `json:"messages"`
}

// RedisStore keeps conversations and user profiles as JSON documents.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) CreateConversation(ctx context.Context, userID, title string) (Conversation, error) {
	now := time.Now().UTC()
	doc := conversationDoc{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]StoredMessage, 0),
	}
	if err := s.setConversation(ctx, doc); err != nil {
		return Conversation{}, err
	}
	return conversationFromDoc(doc), nil
}

func (s *RedisStore) GetConversation(ctx context.Context, conversationID string) (Conversation, error) {
	doc, err := s.getConversation(ctx, conversationID)
	if err != nil {
		return Conversation{}, err
	}
	return conversationFromDoc(doc), nil
}

func (s *RedisStore) CreateMessage(ctx context.Context, conversationID string, msg StoredMessage) (StoredMessage, error) {
	doc, err := s.getConversation(ctx, conversationID)
	if err != nil {
		return StoredMessage{}, err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now().UTC()
	doc.Messages = append(doc.Messages, msg)
	doc.UpdatedAt = msg.CreatedAt
	if err := s.setConversation(ctx, doc); err != nil {
		return StoredMessage{}, err
	}
	return msg, nil
}

func (s *RedisStore) Messages(ctx context.Context, conversationID string) ([]StoredMessage, error) {
	doc, err := s.getConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return doc.Messages, nil
}

func (s *RedisStore) GetProfile(ctx context.Context, userID string) (Profile, error) {
	raw, err := s.rdb.Get(ctx, profileKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", userID, err)
	}
	return p, nil
}

func (s *RedisStore) UpsertProfile(ctx context.Context, p Profile) error {
	userID, _ := p["userId"].(string)
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := s.rdb.Set(ctx, profileKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) getConversation(ctx context.Context, conversationID string) (conversationDoc, error) {
	raw, err := s.rdb.Get(ctx, conversationKey(conversationID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return conversationDoc{}, ErrConversationNotFound
		}
		return conversationDoc{}, fmt.Errorf("failed to get conversation %s: %w", conversationID, err)
	}
	var doc conversationDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return conversationDoc{}, fmt.Errorf("failed to unmarshal conversation %s: %w", conversationID, err)
	}
	return doc, nil
}

func (s *RedisStore) setConversation(ctx context.Context, doc conversationDoc) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := s.rdb.Set(ctx, conversationKey(doc.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save conversation %s: %w", doc.ID, err)
	}
	return nil
}

func conversationFromDoc(doc conversationDoc) Conversation {
	return Conversation{
		ID:        doc.ID,
		UserID:    doc.UserID,
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation_%s", id)
}

func profileKey(userID string) string {
	return fmt.Sprintf("user_details_%s", userID)
}

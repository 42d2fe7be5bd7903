package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pcheng/weather-qna/backend/internal/model/chat"
)

// MemoryStore keeps conversations in process memory. It backs tests and
// ephemeral deployments where no storage path is configured.
type MemoryStore struct {
	mu            sync.RWMutex
	nextID        int64
	conversations map[int64]chat.Conversation
	messages      map[int64][]chat.Message
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:        1,
		conversations: make(map[int64]chat.Conversation),
		messages:      make(map[int64][]chat.Message),
	}
}

// Create provisions a new empty conversation owned by owner.
func (s *MemoryStore) Create(_ context.Context, owner, title string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	conv := chat.Conversation{
		ID:        s.nextID,
		Owner:     owner,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++

	s.conversations[conv.ID] = conv
	s.messages[conv.ID] = make([]chat.Message, 0, 16)
	return conv, nil
}

// Get retrieves a conversation with its messages. Missing ids and foreign
// owners both yield ErrConversationNotFound.
func (s *MemoryStore) Get(_ context.Context, id int64, owner string) (chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok || conv.Owner != owner {
		return chat.Conversation{}, ErrConversationNotFound
	}

	stored := s.messages[id]
	conv.Messages = make([]chat.Message, len(stored))
	copy(conv.Messages, stored)
	return conv, nil
}

// List returns the owner's conversation summaries, newest first.
func (s *MemoryStore) List(_ context.Context, owner string) ([]chat.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]chat.Summary, 0)
	for id, conv := range s.conversations {
		if conv.Owner != owner {
			continue
		}
		summaries = append(summaries, chat.Summary{
			ID:           conv.ID,
			Title:        conv.Title,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(s.messages[id]),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID > summaries[j].ID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// AppendTurn appends the user/assistant pair atomically under the store lock.
func (s *MemoryStore) AppendTurn(_ context.Context, conversationID int64, userMsg, assistantMsg chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return ErrConversationNotFound
	}

	stamp := func(msg *chat.Message) {
		msg.ConversationID = conversationID
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
	}
	stamp(&userMsg)
	stamp(&assistantMsg)
	if assistantMsg.CreatedAt.Before(userMsg.CreatedAt) {
		assistantMsg.CreatedAt = userMsg.CreatedAt
	}

	s.messages[conversationID] = append(s.messages[conversationID], userMsg, assistantMsg)
	conv.UpdatedAt = assistantMsg.CreatedAt
	s.conversations[conversationID] = conv
	return nil
}

package chat

import (
	"context"
	"errors"

	"github.com/pcheng/weather-qna/backend/internal/model/chat"
)

// ErrConversationNotFound covers both a missing conversation and one owned
// by a different user. The two cases are deliberately indistinguishable so
// conversation existence never leaks across accounts.
var ErrConversationNotFound = errors.New("conversation not found")

// Store persists conversations and their ordered messages.
//
// AppendTurn is the unit of atomicity: implementations must serialize
// concurrent appends to the same conversation so message pairs never
// interleave, and must stamp zero CreatedAt values under that serialization
// so timestamps are non-decreasing within a conversation.
type Store interface {
	Create(ctx context.Context, owner, title string) (chat.Conversation, error)
	Get(ctx context.Context, id int64, owner string) (chat.Conversation, error)
	List(ctx context.Context, owner string) ([]chat.Summary, error)
	AppendTurn(ctx context.Context, conversationID int64, userMsg, assistantMsg chat.Message) error
}

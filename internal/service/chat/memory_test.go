package chat_test

import (
	"context"
	"sync"
	"testing"
	"time"

	chatmodel "github.com/pcheng/weather-qna/backend/internal/model/chat"
	chat "github.com/pcheng/weather-qna/backend/internal/service/chat"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()

	conv, err := store.Create(ctx, "user-a", "weather in Paris")
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	got, err := store.Get(ctx, conv.ID, "user-a")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.ID != conv.ID || got.Title != "weather in Paris" {
		t.Fatalf("unexpected conversation: %+v", got)
	}
	if len(got.Messages) != 0 {
		t.Fatalf("expected empty conversation, got %d messages", len(got.Messages))
	}
}

func TestMemoryStoreOwnershipCollapsedToNotFound(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()

	conv, err := store.Create(ctx, "user-a", "")
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	if _, err := store.Get(ctx, conv.ID, "user-b"); err != chat.ErrConversationNotFound {
		t.Fatalf("expected ErrConversationNotFound for foreign owner, got %v", err)
	}
	if _, err := store.Get(ctx, 9999, "user-a"); err != chat.ErrConversationNotFound {
		t.Fatalf("expected ErrConversationNotFound for missing id, got %v", err)
	}
}

func TestMemoryStoreAppendTurnOrdering(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()

	conv, _ := store.Create(ctx, "user-a", "")
	for i := 0; i < 3; i++ {
		err := store.AppendTurn(ctx, conv.ID,
			chatmodel.Message{Role: chatmodel.RoleUser, Content: "q"},
			chatmodel.Message{Role: chatmodel.RoleAssistant, Content: "a"},
		)
		if err != nil {
			t.Fatalf("AppendTurn err: %v", err)
		}
	}

	got, err := store.Get(ctx, conv.ID, "user-a")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if len(got.Messages) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(got.Messages))
	}

	var last time.Time
	for i, msg := range got.Messages {
		wantRole := chatmodel.RoleUser
		if i%2 == 1 {
			wantRole = chatmodel.RoleAssistant
		}
		if msg.Role != wantRole {
			t.Fatalf("message %d: expected role %s, got %s", i, wantRole, msg.Role)
		}
		if msg.CreatedAt.Before(last) {
			t.Fatalf("message %d: timestamp went backwards", i)
		}
		last = msg.CreatedAt
	}
}

func TestMemoryStoreConcurrentAppendsDoNotInterleave(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()

	conv, _ := store.Create(ctx, "user-a", "")

	const turns = 32
	var wg sync.WaitGroup
	wg.Add(turns)
	for i := 0; i < turns; i++ {
		go func() {
			defer wg.Done()
			err := store.AppendTurn(ctx, conv.ID,
				chatmodel.Message{Role: chatmodel.RoleUser, Content: "q"},
				chatmodel.Message{Role: chatmodel.RoleAssistant, Content: "a"},
			)
			if err != nil {
				t.Errorf("AppendTurn err: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, conv.ID, "user-a")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if len(got.Messages) != 2*turns {
		t.Fatalf("expected %d messages, got %d", 2*turns, len(got.Messages))
	}
	for i, msg := range got.Messages {
		wantRole := chatmodel.RoleUser
		if i%2 == 1 {
			wantRole = chatmodel.RoleAssistant
		}
		if msg.Role != wantRole {
			t.Fatalf("message %d: pairs interleaved, expected %s got %s", i, wantRole, msg.Role)
		}
	}
}

func TestMemoryStoreAppendTurnMissingConversation(t *testing.T) {
	store := chat.NewMemoryStore()

	err := store.AppendTurn(context.Background(), 42,
		chatmodel.Message{Role: chatmodel.RoleUser, Content: "q"},
		chatmodel.Message{Role: chatmodel.RoleAssistant, Content: "a"},
	)
	if err != chat.ErrConversationNotFound {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()

	first, _ := store.Create(ctx, "user-a", "first")
	time.Sleep(2 * time.Millisecond)
	second, _ := store.Create(ctx, "user-a", "second")
	store.Create(ctx, "user-b", "other user")

	summaries, err := store.List(ctx, "user-a")
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != second.ID || summaries[1].ID != first.ID {
		t.Fatalf("expected newest first, got %v then %v", summaries[0].ID, summaries[1].ID)
	}
}

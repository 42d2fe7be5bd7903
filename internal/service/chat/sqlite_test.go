package chat_test

import (
	"context"
	"sync"
	"testing"
	"time"

	chatmodel "github.com/pcheng/weather-qna/backend/internal/model/chat"
	chat "github.com/pcheng/weather-qna/backend/internal/service/chat"
)

func newSQLiteStore(t *testing.T) *chat.SQLiteStore {
	t.Helper()
	store, err := chat.NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore err: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	conv, err := store.Create(ctx, "user-a", "weather in Paris")
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if conv.ID == 0 {
		t.Fatal("expected non-zero conversation id")
	}

	err = store.AppendTurn(ctx, conv.ID,
		chatmodel.Message{Role: chatmodel.RoleUser, Content: "What is the weather in Paris tomorrow?"},
		chatmodel.Message{Role: chatmodel.RoleAssistant, Content: "Sunny."},
	)
	if err != nil {
		t.Fatalf("AppendTurn err: %v", err)
	}

	got, err := store.Get(ctx, conv.ID, "user-a")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != chatmodel.RoleUser || got.Messages[1].Role != chatmodel.RoleAssistant {
		t.Fatalf("unexpected roles: %s then %s", got.Messages[0].Role, got.Messages[1].Role)
	}
	if got.Messages[1].CreatedAt.Before(got.Messages[0].CreatedAt) {
		t.Fatal("assistant timestamp precedes user timestamp")
	}
}

func TestSQLiteStoreOwnershipCollapsedToNotFound(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	conv, err := store.Create(ctx, "user-a", "")
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	if _, err := store.Get(ctx, conv.ID, "user-b"); err != chat.ErrConversationNotFound {
		t.Fatalf("expected ErrConversationNotFound for foreign owner, got %v", err)
	}
	if _, err := store.Get(ctx, conv.ID+100, "user-a"); err != chat.ErrConversationNotFound {
		t.Fatalf("expected ErrConversationNotFound for missing id, got %v", err)
	}
}

func TestSQLiteStoreConcurrentAppendsDoNotInterleave(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	conv, err := store.Create(ctx, "user-a", "")
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	const turns = 16
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

func TestSQLiteStoreAppendTurnMissingConversation(t *testing.T) {
	store := newSQLiteStore(t)

	err := store.AppendTurn(context.Background(), 12345,
		chatmodel.Message{Role: chatmodel.RoleUser, Content: "q"},
		chatmodel.Message{Role: chatmodel.RoleAssistant, Content: "a"},
	)
	if err != chat.ErrConversationNotFound {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestSQLiteStoreListNewestFirst(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	first, _ := store.Create(ctx, "user-a", "first")
	time.Sleep(2 * time.Millisecond)
	second, _ := store.Create(ctx, "user-a", "second")
	store.Create(ctx, "user-b", "other user")

	if err := store.AppendTurn(ctx, second.ID,
		chatmodel.Message{Role: chatmodel.RoleUser, Content: "q"},
		chatmodel.Message{Role: chatmodel.RoleAssistant, Content: "a"},
	); err != nil {
		t.Fatalf("AppendTurn err: %v", err)
	}

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
	if summaries[0].MessageCount != 2 || summaries[1].MessageCount != 0 {
		t.Fatalf("unexpected message counts: %+v", summaries)
	}
}

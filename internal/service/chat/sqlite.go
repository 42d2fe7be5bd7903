package chat

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/pcheng/weather-qna/backend/internal/model/chat"
)

// SQLiteStore is the durable conversation store. Pair appends run inside a
// single transaction, and a store-level mutex keeps SQLite writers from
// contending on the shared connection.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database under dataPath.
func NewSQLiteStore(dataPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, "conversations.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id INTEGER NOT NULL REFERENCES conversations(id),
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_owner ON conversations(owner);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a new empty conversation owned by owner.
func (s *SQLiteStore) Create(ctx context.Context, owner, title string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (owner, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		owner, title, now, now,
	)
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("inserting conversation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("reading conversation id: %w", err)
	}

	return chat.Conversation{
		ID:        id,
		Owner:     owner,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []chat.Message{},
	}, nil
}

// Get loads a conversation with its ordered messages. The owner filter is
// part of the lookup, so a foreign conversation is indistinguishable from a
// missing one.
func (s *SQLiteStore) Get(ctx context.Context, id int64, owner string) (chat.Conversation, error) {
	var conv chat.Conversation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner, title, created_at, updated_at FROM conversations WHERE id = ? AND owner = ?`,
		id, owner,
	).Scan(&conv.ID, &conv.Owner, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if err == sql.ErrNoRows {
		return chat.Conversation{}, ErrConversationNotFound
	}
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("querying conversation: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM messages WHERE conversation_id = ? ORDER BY seq`,
		id,
	)
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	conv.Messages = make([]chat.Message, 0, 16)
	for rows.Next() {
		msg := chat.Message{ConversationID: id}
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return chat.Conversation{}, fmt.Errorf("scanning message: %w", err)
		}
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return chat.Conversation{}, fmt.Errorf("reading messages: %w", err)
	}
	return conv, nil
}

// List returns the owner's conversation summaries, newest first.
func (s *SQLiteStore) List(ctx context.Context, owner string) ([]chat.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.created_at, c.updated_at, COUNT(m.id)
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.owner = ?
		GROUP BY c.id
		ORDER BY c.created_at DESC, c.id DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	summaries := make([]chat.Summary, 0)
	for rows.Next() {
		var sum chat.Summary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.CreatedAt, &sum.UpdatedAt, &sum.MessageCount); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading conversations: %w", err)
	}
	return summaries, nil
}

// AppendTurn writes the user/assistant pair in one transaction so concurrent
// turns on the same conversation never interleave.
func (s *SQLiteStore) AppendTurn(ctx context.Context, conversationID int64, userMsg, assistantMsg chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM conversations WHERE id = ?`, conversationID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("checking conversation: %w", err)
	}

	var seq sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM messages WHERE conversation_id = ?`, conversationID,
	).Scan(&seq); err != nil {
		return fmt.Errorf("reading message sequence: %w", err)
	}
	next := seq.Int64 + 1

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

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (id, conversation_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range []chat.Message{userMsg, assistantMsg} {
		if _, err := stmt.ExecContext(ctx,
			msg.ID, conversationID, next+int64(i), msg.Role, msg.Content, msg.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting message: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		assistantMsg.CreatedAt, conversationID,
	); err != nil {
		return fmt.Errorf("updating conversation: %w", err)
	}

	return tx.Commit()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

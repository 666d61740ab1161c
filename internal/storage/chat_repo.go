package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_store.go -package=mocks fastrag/internal/storage ChatStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ChatStore defines the interface for chat history storage operations.
type ChatStore interface {
	// Append stores a chat message and returns it with its assigned id and timestamp.
	Append(ctx context.Context, msg ChatMessage) (*ChatMessage, error)
	// ListBySession returns all messages for a session, ordered by creation
	// time ascending. An unknown session yields an empty slice, not an error.
	ListBySession(ctx context.Context, sessionID string) ([]ChatMessage, error)
}

// ChatRepo provides methods for chat history operations.
// It implements the ChatStore interface.
type ChatRepo struct {
	db     *sql.DB
	writer *Writer
}

// NewChatRepo creates a new ChatRepo. Writes go through the given writer.
func NewChatRepo(db *sql.DB, writer *Writer) *ChatRepo {
	return &ChatRepo{db: db, writer: writer}
}

// Append stores a chat message and returns the stored row.
func (r *ChatRepo) Append(ctx context.Context, msg ChatMessage) (*ChatMessage, error) {
	var id int64
	err := r.writer.Do(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO chat_history (session_id, role, message, llm_provider, llm_model)
			 VALUES (?, ?, ?, ?, ?)`,
			msg.SessionID, msg.Role, msg.Message, msg.Provider, msg.Model,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chat message: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get inserted id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.getByID(ctx, id)
}

// ListBySession returns all messages for a session, ascending by timestamp.
func (r *ChatRepo) ListBySession(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, timestamp, role, message, llm_provider, llm_model
		 FROM chat_history WHERE session_id = ? ORDER BY timestamp ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	messages := make([]ChatMessage, 0)
	for rows.Next() {
		msg, err := scanChatMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat history: %w", err)
	}

	return messages, nil
}

func (r *ChatRepo) getByID(ctx context.Context, id int64) (*ChatMessage, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, timestamp, role, message, llm_provider, llm_model
		 FROM chat_history WHERE id = ?`,
		id,
	)
	msg, err := scanChatMessage(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChatMessage(row rowScanner) (*ChatMessage, error) {
	var msg ChatMessage
	var timestampStr string

	err := row.Scan(&msg.ID, &msg.SessionID, &timestampStr, &msg.Role, &msg.Message, &msg.Provider, &msg.Model)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan chat message: %w", err)
	}

	msg.Timestamp, err = parseTimestamp(timestampStr)
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// parseTimestamp parses a SQLite DATETIME string.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	// Try alternative format (SQLite might use different format)
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t, nil
}

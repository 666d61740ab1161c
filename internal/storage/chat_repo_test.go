package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

// newTestDB opens a temporary SQLite database with the schema applied and a
// running writer. Both are cleaned up with the test.
func newTestDB(t *testing.T) (*sql.DB, *Writer) {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() unexpected error: %v", err)
	}

	writer := NewWriter()
	t.Cleanup(func() {
		writer.Close()
		_ = db.Close()
	})

	return db, writer
}

func TestChatRepo_AppendAndList(t *testing.T) {
	db, writer := newTestDB(t)
	repo := NewChatRepo(db, writer)
	ctx := context.Background()

	first, err := repo.Append(ctx, ChatMessage{
		SessionID: "session-1",
		Role:      RoleUser,
		Message:   "Hi",
		Provider:  "claude",
		Model:     "claude-3-5-sonnet-20240620",
	})
	if err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}
	if first.ID == 0 {
		t.Error("Append() should assign an id")
	}
	if first.Timestamp.IsZero() {
		t.Error("Append() should assign a timestamp")
	}

	second, err := repo.Append(ctx, ChatMessage{
		SessionID: "session-1",
		Role:      RoleAssistant,
		Message:   "Hello!",
		Provider:  "claude",
		Model:     "claude-3-5-sonnet-20240620",
	})
	if err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}

	// A different session must not leak into the listing.
	if _, err := repo.Append(ctx, ChatMessage{
		SessionID: "session-2",
		Role:      RoleUser,
		Message:   "other",
		Provider:  "openai",
		Model:     "gpt-4o",
	}); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}

	messages, err := repo.ListBySession(ctx, "session-1")
	if err != nil {
		t.Fatalf("ListBySession() unexpected error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("ListBySession() returned %d messages, want 2", len(messages))
	}
	if messages[0].ID != first.ID || messages[1].ID != second.ID {
		t.Errorf("ListBySession() order = [%d %d], want [%d %d]",
			messages[0].ID, messages[1].ID, first.ID, second.ID)
	}
	if messages[0].Role != RoleUser || messages[0].Message != "Hi" {
		t.Errorf("ListBySession()[0] = %q/%q, want user/Hi", messages[0].Role, messages[0].Message)
	}
	if messages[1].Role != RoleAssistant || messages[1].Message != "Hello!" {
		t.Errorf("ListBySession()[1] = %q/%q, want assistant/Hello!", messages[1].Role, messages[1].Message)
	}
	if messages[0].Provider != "claude" || messages[0].Model != "claude-3-5-sonnet-20240620" {
		t.Errorf("ListBySession()[0] provider/model = %q/%q", messages[0].Provider, messages[0].Model)
	}
}

func TestChatRepo_ListUnknownSession(t *testing.T) {
	db, writer := newTestDB(t)
	repo := NewChatRepo(db, writer)

	messages, err := repo.ListBySession(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("ListBySession() unexpected error: %v", err)
	}
	if messages == nil {
		t.Fatal("ListBySession() should return an empty slice, not nil")
	}
	if len(messages) != 0 {
		t.Errorf("ListBySession() returned %d messages, want 0", len(messages))
	}
}

func TestChatRepo_AppendClosedWriter(t *testing.T) {
	db, _ := newTestDB(t)

	writer := NewWriter()
	writer.Close()
	repo := NewChatRepo(db, writer)

	_, err := repo.Append(context.Background(), ChatMessage{
		SessionID: "session-1",
		Role:      RoleUser,
		Message:   "Hi",
		Provider:  "claude",
		Model:     "m",
	})
	if !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Append() error = %v, want ErrWriterClosed", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "sqlite datetime", input: "2026-08-31 12:30:45", wantErr: false},
		{name: "rfc3339", input: "2026-08-31T12:30:45Z", wantErr: false},
		{name: "garbage", input: "not a time", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := parseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTimestamp(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("parseTimestamp(%q) unexpected error: %v", tt.input, err)
			}
			if ts.IsZero() {
				t.Errorf("parseTimestamp(%q) returned zero time", tt.input)
			}
		})
	}
}

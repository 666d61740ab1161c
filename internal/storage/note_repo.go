package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks fastrag/internal/storage NoteStore

import (
	"context"
	"database/sql"
	"fmt"
)

// defaultNoteLimit caps List results when the caller passes limit <= 0.
const defaultNoteLimit = 100

// NoteStore defines the interface for note storage operations.
type NoteStore interface {
	// Create stores a new note and returns it with its assigned id and timestamp.
	Create(ctx context.Context, title, content string) (*Note, error)
	// Get returns a note by id. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*Note, error)
	// List returns notes ordered by creation time descending.
	List(ctx context.Context, limit int) ([]Note, error)
	// Update overwrites title and content. Returns ErrNotFound for unknown ids.
	Update(ctx context.Context, id int64, title, content string) (*Note, error)
	// Delete removes a note and returns the deleted row. Returns ErrNotFound
	// for unknown ids.
	Delete(ctx context.Context, id int64) (*Note, error)
}

// NoteRepo provides methods for note operations.
// It implements the NoteStore interface.
type NoteRepo struct {
	db     *sql.DB
	writer *Writer
}

// NewNoteRepo creates a new NoteRepo. Writes go through the given writer.
func NewNoteRepo(db *sql.DB, writer *Writer) *NoteRepo {
	return &NoteRepo{db: db, writer: writer}
}

// Create stores a new note.
func (r *NoteRepo) Create(ctx context.Context, title, content string) (*Note, error) {
	var id int64
	err := r.writer.Do(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO notes (title, content) VALUES (?, ?)",
			title, content,
		)
		if err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
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

	return r.Get(ctx, id)
}

// Get returns a note by id.
func (r *NoteRepo) Get(ctx context.Context, id int64) (*Note, error) {
	var note Note
	var timestampStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, timestamp, title, content FROM notes WHERE id = ?",
		id,
	).Scan(&note.ID, &timestampStr, &note.Title, &note.Content)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}

	note.Timestamp, err = parseTimestamp(timestampStr)
	if err != nil {
		return nil, err
	}

	return &note, nil
}

// List returns notes ordered by creation time descending.
func (r *NoteRepo) List(ctx context.Context, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = defaultNoteLimit
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, timestamp, title, content FROM notes ORDER BY timestamp DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	notes := make([]Note, 0)
	for rows.Next() {
		var note Note
		var timestampStr string
		if err := rows.Scan(&note.ID, &timestampStr, &note.Title, &note.Content); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		note.Timestamp, err = parseTimestamp(timestampStr)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

// Update overwrites title and content of an existing note.
func (r *NoteRepo) Update(ctx context.Context, id int64, title, content string) (*Note, error) {
	err := r.writer.Do(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			"UPDATE notes SET title = ?, content = ? WHERE id = ?",
			title, content, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

// Delete removes a note and returns the deleted row.
func (r *NoteRepo) Delete(ctx context.Context, id int64) (*Note, error) {
	note, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = r.writer.Do(ctx, func(ctx context.Context) error {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

package retrieval

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks fastrag/internal/retrieval Embedder

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fastrag/internal/contextutil"
	"fastrag/internal/storage"
	"fastrag/internal/vectorstore"
)

// Embedder produces one embedding vector per input text.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer keeps the vector collection in sync with the notes table.
// Notes are embedded whole; each note maps to exactly one point.
type Indexer struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	notes      storage.NoteStore
	collection string
}

// NewIndexer creates a new note indexer.
func NewIndexer(embedder Embedder, store vectorstore.VectorStore, notes storage.NoteStore, collection string) *Indexer {
	return &Indexer{
		embedder:   embedder,
		store:      store,
		notes:      notes,
		collection: collection,
	}
}

// pointID derives a stable Qdrant point id for a note, so re-indexing a note
// overwrites its previous point.
func pointID(noteID int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("note-%d", noteID))).String()
}

// IndexNote embeds a note and upserts its point.
func (ix *Indexer) IndexNote(ctx context.Context, note *storage.Note) error {
	text := note.Title + "\n\n" + note.Content

	embeddings, err := ix.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("failed to embed note: %w", err)
	}
	if len(embeddings) == 0 {
		return fmt.Errorf("no embedding returned for note")
	}

	point := vectorstore.Point{
		ID:  pointID(note.ID),
		Vec: embeddings[0],
		Meta: map[string]any{
			"note_id": note.ID,
			"title":   note.Title,
		},
	}

	return ix.store.Upsert(ctx, ix.collection, []vectorstore.Point{point})
}

// RemoveNote deletes a note's point from the collection.
func (ix *Indexer) RemoveNote(ctx context.Context, noteID int64) error {
	return ix.store.Delete(ctx, ix.collection, []string{pointID(noteID)})
}

// IndexAll re-embeds every stored note. Individual failures are logged and
// skipped so one bad note doesn't abort the pass.
func (ix *Indexer) IndexAll(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	notes, err := ix.notes.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	var failed int
	for i := range notes {
		if err := ix.IndexNote(ctx, &notes[i]); err != nil {
			logger.WarnContext(ctx, "failed to index note", "note_id", notes[i].ID, "error", err)
			failed++
		}
	}

	logger.InfoContext(ctx, "note indexing completed", "total", len(notes), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d notes failed to index", failed, len(notes))
	}
	return nil
}

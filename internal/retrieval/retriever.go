package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fastrag/internal/contextutil"
	"fastrag/internal/storage"
	"fastrag/internal/vectorstore"
)

// defaultK is the number of notes retrieved per question when k is zero.
const defaultK = 3

// Retriever assembles a context block for a question from the most similar
// stored notes.
type Retriever struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	notes      storage.NoteStore
	collection string
}

// NewRetriever creates a new retriever.
func NewRetriever(embedder Embedder, store vectorstore.VectorStore, notes storage.NoteStore, collection string) *Retriever {
	return &Retriever{
		embedder:   embedder,
		store:      store,
		notes:      notes,
		collection: collection,
	}
}

// Context returns a context block built from the k most similar notes.
// Returns an empty string when nothing relevant is stored.
func (r *Retriever) Context(ctx context.Context, question string, k int) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		k = defaultK
	}

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return "", fmt.Errorf("no embedding returned for question")
	}

	results, err := r.store.Search(ctx, r.collection, embeddings[0], k)
	if err != nil {
		return "", fmt.Errorf("failed to search notes: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, result := range results {
		noteID, ok := result.Meta["note_id"].(int64)
		if !ok {
			logger.WarnContext(ctx, "search result missing note_id", "point_id", result.PointID)
			continue
		}

		note, err := r.notes.Get(ctx, noteID)
		if errors.Is(err, storage.ErrNotFound) {
			// The note was deleted after its point was indexed.
			logger.DebugContext(ctx, "indexed note no longer exists", "note_id", noteID)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to load note %d: %w", noteID, err)
		}

		if b.Len() > 0 {
			b.WriteString("\n---\n")
		}
		b.WriteString(note.Title)
		b.WriteString("\n")
		b.WriteString(note.Content)
	}

	return b.String(), nil
}

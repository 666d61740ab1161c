package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"fastrag/internal/contextutil"
	"fastrag/internal/storage"
)

// NoteIndexer mirrors the retrieval indexer's note hooks. A nil indexer
// disables vector indexing; CRUD semantics are unaffected either way.
type NoteIndexer interface {
	IndexNote(ctx context.Context, note *storage.Note) error
	RemoveNote(ctx context.Context, noteID int64) error
}

// NoteHandler handles note CRUD and markdown rendering.
type NoteHandler struct {
	notes    storage.NoteStore
	indexer  NoteIndexer
	markdown goldmark.Markdown
	template *template.Template
}

// notePageData holds template data for rendered note pages.
type notePageData struct {
	Title   string
	Content template.HTML
}

// NewNoteHandler creates a new NoteHandler. indexer may be nil.
func NewNoteHandler(notes storage.NoteStore, indexer NoteIndexer) *NoteHandler {
	tmpl := template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
</head>
<body>
  <h1>{{.Title}}</h1>
  {{.Content}}
</body>
</html>
`))

	return &NoteHandler{
		notes:   notes,
		indexer: indexer,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithHardWraps(),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: tmpl,
	}
}

// NoteCreate represents the request payload for creating or updating a note.
type NoteCreate struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NoteResponse represents a stored note.
type NoteResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func toNoteResponse(note *storage.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		Timestamp: note.Timestamp,
	}
}

// List returns all notes, newest first.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	notes, err := h.notes.List(ctx, 0)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list notes", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list notes")
		return
	}

	resp := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		resp = append(resp, toNoteResponse(&notes[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single note by id.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	note, err := h.notes.Get(ctx, id)
	if err != nil {
		h.handleStoreError(w, r, err, "Failed to get note")
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// Create stores a new note.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	req, ok := h.decodeNote(w, r)
	if !ok {
		return
	}

	note, err := h.notes.Create(ctx, req.Title, req.Content)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create note", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create note")
		return
	}

	h.indexAsync(note)
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// Update overwrites an existing note.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.noteID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeNote(w, r)
	if !ok {
		return
	}

	note, err := h.notes.Update(ctx, id, req.Title, req.Content)
	if err != nil {
		h.handleStoreError(w, r, err, "Failed to update note")
		return
	}

	h.indexAsync(note)
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// Delete removes a note and returns the deleted entity.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	note, err := h.notes.Delete(ctx, id)
	if err != nil {
		h.handleStoreError(w, r, err, "Failed to delete note")
		return
	}

	h.removeAsync(note.ID)
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// Render serves the note content as a rendered HTML page.
func (h *NoteHandler) Render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	note, err := h.notes.Get(ctx, id)
	if err != nil {
		h.handleStoreError(w, r, err, "Failed to get note")
		return
	}

	var rendered bytes.Buffer
	if err := h.markdown.Convert([]byte(note.Content), &rendered); err != nil {
		logger.ErrorContext(ctx, "failed to render note markdown", "note_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render note")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = h.template.Execute(w, notePageData{
		Title:   note.Title,
		Content: template.HTML(rendered.String()),
	})
}

// noteID parses the id route parameter, writing a 400 on failure.
func (h *NoteHandler) noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "noteID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid note id")
		return 0, false
	}
	return id, true
}

// decodeNote decodes and validates a note payload, writing a 400 on failure.
func (h *NoteHandler) decodeNote(w http.ResponseWriter, r *http.Request) (NoteCreate, bool) {
	var req NoteCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return NoteCreate{}, false
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return NoteCreate{}, false
	}
	return req, true
}

func (h *NoteHandler) handleStoreError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(r.Context())

	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	logger.ErrorContext(r.Context(), "note store error", "error", err)
	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// indexAsync updates the vector index in the background so CRUD latency
// doesn't depend on the embedding service.
func (h *NoteHandler) indexAsync(note *storage.Note) {
	if h.indexer == nil {
		return
	}
	noteCopy := *note
	go func() {
		ctx := context.Background()
		if err := h.indexer.IndexNote(ctx, &noteCopy); err != nil {
			contextutil.LoggerFromContext(ctx).Warn("failed to index note", "note_id", noteCopy.ID, "error", err)
		}
	}()
}

func (h *NoteHandler) removeAsync(noteID int64) {
	if h.indexer == nil {
		return
	}
	go func() {
		ctx := context.Background()
		if err := h.indexer.RemoveNote(ctx, noteID); err != nil {
			contextutil.LoggerFromContext(ctx).Warn("failed to remove note from index", "note_id", noteID, "error", err)
		}
	}()
}

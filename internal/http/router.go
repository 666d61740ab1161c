package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fastrag/internal/handlers"
	"fastrag/internal/service"
	"fastrag/internal/storage"
	"fastrag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	GenerateService service.GenerateService
	ChatStore       storage.ChatStore
	NoteStore       storage.NoteStore
	NoteIndexer     handlers.NoteIndexer // nil when retrieval is disabled
	DB              *sql.DB
	VectorStore     vectorstore.VectorStore // nil when retrieval is disabled
	CollectionName  string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	generateHandler := handlers.NewGenerateHandler(deps.GenerateService)
	historyHandler := handlers.NewHistoryHandler(deps.ChatStore)
	noteHandler := handlers.NewNoteHandler(deps.NoteStore, deps.NoteIndexer)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.CollectionName)
	modelsHandler := handlers.NewModelsHandler()

	r.Method(http.MethodPost, "/generate_stream", generateHandler)

	r.Route("/chat_history", func(r chi.Router) {
		r.Post("/", historyHandler.Create)
		r.Get("/{sessionID}", historyHandler.List)
	})

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", noteHandler.List)
		r.Post("/", noteHandler.Create)
		r.Get("/{noteID}", noteHandler.Get)
		r.Put("/{noteID}", noteHandler.Update)
		r.Delete("/{noteID}", noteHandler.Delete)
		r.Get("/{noteID}/html", noteHandler.Render)
	})

	r.Method(http.MethodGet, "/models", modelsHandler)
	r.Method(http.MethodGet, "/health", healthHandler)

	return r
}

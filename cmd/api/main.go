package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"fastrag/internal/config"
	"fastrag/internal/http"
	"fastrag/internal/llm"
	"fastrag/internal/retrieval"
	"fastrag/internal/service"
	"fastrag/internal/storage"
	"fastrag/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// All writes go through one writer; SQLite dislikes concurrent writers.
	writer := storage.NewWriter()
	defer writer.Close()

	chatRepo := storage.NewChatRepo(db, writer)
	noteRepo := storage.NewNoteRepo(db, writer)

	// Provider registry: one credential per provider, read once. A missing
	// key only fails requests selecting that provider.
	registry := llm.NewRegistry(
		llm.ProviderConfig{APIKey: cfg.AnthropicAPIKey, BaseURL: cfg.AnthropicBaseURL},
		llm.ProviderConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL},
		llm.ProviderConfig{APIKey: cfg.GoogleAPIKey, BaseURL: cfg.GeminiBaseURL},
	)

	// Optional retrieval stack
	var (
		retriever   service.ContextRetriever
		noteIndexer *retrieval.Indexer
		vectorStore vectorstore.VectorStore
	)
	if cfg.RetrievalEnabled() {
		ctx := context.Background()

		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

		embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
		noteIndexer = retrieval.NewIndexer(embedder, qdrantStore, noteRepo, cfg.QdrantCollection)
		retriever = retrieval.NewRetriever(embedder, qdrantStore, noteRepo, cfg.QdrantCollection)
		vectorStore = qdrantStore

		// Reconcile the vector index with stored notes in the background
		go func() {
			if err := noteIndexer.IndexAll(context.Background()); err != nil {
				slog.Warn("Note indexing completed with errors", "error", err)
			}
		}()
	} else {
		slog.Info("Retrieval stack not configured, rag_enabled requests degrade to plain generation")
	}

	generateService := service.NewGenerateService(
		registry,
		chatRepo,
		retriever,
		time.Duration(cfg.GenerationTimeout)*time.Second,
	)

	deps := &http.Deps{
		GenerateService: generateService,
		ChatStore:       chatRepo,
		NoteStore:       noteRepo,
		DB:              db,
		VectorStore:     vectorStore,
		CollectionName:  cfg.QdrantCollection,
	}
	if noteIndexer != nil {
		deps.NoteIndexer = noteIndexer
	}
	router := http.NewRouter(deps)

	addr := cfg.ListenAddr()
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

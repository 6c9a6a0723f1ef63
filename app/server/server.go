package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"rag/app/agent"
	"rag/app/api"
	"rag/config"
	"rag/model"
	"rag/service"
	"rag/store"

	"github.com/gofiber/fiber/v2"
)

var fiberConfig = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	cfg    config.Config
	logger *slog.Logger
}

func NewServer(cfg config.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()

	vs, err := newVectorStore(ctx, s.cfg)
	if err != nil {
		log.Fatal("error to connect to vector store: ", err)
		return
	}

	embedder := model.NewHTTPEmbedder(s.cfg.EmbeddingURL, s.cfg.EmbedTimeout)
	reranker := model.NewCrossEncoderReranker(s.cfg.RerankURL, s.cfg.RerankTimeout, s.logger)
	generator := agent.New(agent.Config{
		Provider: s.cfg.LLMProvider,
		URL:      s.cfg.LLMURL,
		Model:    s.cfg.LLMModel,
		APIKey:   s.cfg.LLMAPIKey,
		Timeout:  s.cfg.GenerateTimeout,
	}, s.logger)

	svc := service.New(vs, embedder, reranker, generator, service.Options{
		TopK:       s.cfg.TopK,
		MaxContext: s.cfg.MaxContext,
		ChunkSize:  s.cfg.ChunkSize,
	}, s.logger)

	var (
		app            = fiber.New(fiberConfig)
		checkHandler   = api.NewCheckHandler(svc)
		requestHandler = api.NewRequestHandler(svc)
		check          = app.Group("/check")
		apiv1          = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/documents", requestHandler.HandleIngest)
	apiv1.Post("/query", requestHandler.HandleQuery)

	if err := app.Listen(s.cfg.ServerAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return
	}
}

// newVectorStore selects the store backend. The embedding dimension is
// fixed by configuration and must match the collection geometry; a
// mismatch is a startup error, not a per-request one.
func newVectorStore(ctx context.Context, cfg config.Config) (store.VectorStore, error) {
	if cfg.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", cfg.EmbeddingDim)
	}
	switch cfg.VectorStore {
	case config.StorePgvector:
		return store.NewPostgresStore(ctx, cfg.PostgresDSN, cfg.Collection, cfg.EmbeddingDim)
	case config.StoreQdrant:
		return store.NewQdrantStore(store.QdrantConfig{
			URL:        cfg.QdrantURL,
			Collection: cfg.Collection,
			Dimension:  cfg.EmbeddingDim,
			Timeout:    cfg.SearchTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.VectorStore)
	}
}

// Package service implements the ingestion and query pipelines:
// chunking, embedding, indexing, retrieval, reranking, prompt assembly,
// generation, and citation mapping.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rag/chunker"
	"rag/model"
	"rag/store"
	"rag/types"

	"github.com/google/uuid"
)

// Generator produces an answer for a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service runs each request as one sequential pipeline of network
// calls. It holds no cross-request state; concurrent requests are
// independent pipeline instances.
type Service struct {
	store      store.VectorStore
	embedder   model.Embedder
	reranker   model.Reranker
	generator  Generator
	topK       int
	maxContext int
	chunkSize  int
	logger     *slog.Logger
}

type Options struct {
	TopK       int
	MaxContext int
	ChunkSize  int
}

func New(vs store.VectorStore, embedder model.Embedder, reranker model.Reranker, generator Generator, opts Options, logger *slog.Logger) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 20
	}
	if opts.MaxContext <= 0 {
		opts.MaxContext = 8
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunker.DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      vs,
		embedder:   embedder,
		reranker:   reranker,
		generator:  generator,
		topK:       opts.TopK,
		maxContext: opts.MaxContext,
		chunkSize:  opts.ChunkSize,
		logger:     logger,
	}
}

// EnsureCollection provisions the vector store collection. Idempotent.
func (s *Service) EnsureCollection(ctx context.Context) error {
	if err := s.store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrProvisioning, err)
	}
	return nil
}

// Ingest chunks the document, embeds all chunks in one batch, and
// upserts one point per chunk in a single write. Partial writes are
// not rolled back; a failed document must be re-ingested.
func (s *Service) Ingest(ctx context.Context, params types.IngestParams) (types.IngestResult, error) {
	doc := types.Document{
		ID:       uuid.New(),
		Category: params.Category,
		Title:    params.Title,
		Text:     params.Text,
	}
	texts := chunker.Split(doc.Text, s.chunkSize)
	if len(texts) == 0 {
		return types.IngestResult{DocumentID: doc.ID.String()}, nil
	}

	chunks := make([]types.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = types.Chunk{
			ID:       uuid.New(),
			DocID:    doc.ID,
			Index:    i,
			Category: doc.Category,
			Title:    doc.Title,
			Content:  text,
		}
	}

	if err := s.EnsureCollection(ctx); err != nil {
		return types.IngestResult{}, err
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return types.IngestResult{}, fmt.Errorf("%w: %w", ErrIngestion, err)
	}

	points := make([]store.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = store.Point{
			ID: chunk.ID.String(),
			Payload: store.Payload{
				DocumentID: chunk.DocID.String(),
				Category:   chunk.Category,
				Title:      chunk.Title,
				Text:       chunk.Content,
			},
			Vector: vectors[i],
		}
	}
	if err := s.store.Upsert(ctx, points); err != nil {
		return types.IngestResult{}, fmt.Errorf("%w: %w", ErrIngestion, err)
	}

	s.logger.Info("document ingested", "document_id", doc.ID, "category", doc.Category, "chunks", len(points))
	return types.IngestResult{DocumentID: doc.ID.String(), Chunks: len(points)}, nil
}

// Query runs the full pipeline: validate, provision, retrieve, rerank,
// select, compose, generate. Zero retrieval hits short-circuit to the
// fixed no-information answer with no generation call.
func (s *Service) Query(ctx context.Context, params types.QueryParams) (types.ChatAnswer, error) {
	if strings.TrimSpace(params.Query) == "" {
		return types.ChatAnswer{}, fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}

	if err := s.EnsureCollection(ctx); err != nil {
		return types.ChatAnswer{}, err
	}

	hits, err := s.retrieve(ctx, params.Query, params.Category)
	if err != nil {
		return types.ChatAnswer{}, err
	}
	if len(hits) == 0 {
		s.logger.Info("no hits for query", "category", params.Category)
		return types.ChatAnswer{Answer: NoInformationAnswer, Citations: []types.Citation{}}, nil
	}

	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Payload.Text
	}
	perm := s.reranker.Rerank(ctx, params.Query, texts)
	if len(perm) > s.maxContext {
		perm = perm[:s.maxContext]
	}

	contexts := make([]string, 0, len(perm))
	citations := make([]types.Citation, 0, len(perm))
	for _, idx := range perm {
		hit := hits[idx]
		contexts = append(contexts, hit.Payload.Text)
		citations = append(citations, types.Citation{
			DocumentID: hit.Payload.DocumentID,
			ChunkID:    hit.ID,
		})
	}

	answer, err := s.generator.Generate(ctx, composePrompt(contexts, params.Query))
	if err != nil {
		return types.ChatAnswer{}, err
	}
	return types.ChatAnswer{Answer: strings.TrimSpace(answer), Citations: citations}, nil
}

func (s *Service) retrieve(ctx context.Context, query, category string) ([]store.Hit, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	hits, err := s.store.Search(ctx, vectors[0], s.topK, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	return hits, nil
}

package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// Reranker reorders retrieval candidates for a query. The returned
// slice is a permutation of original indices in descending relevance.
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string) []int
}

// CrossEncoderReranker scores (query, text) pairs through an external
// cross-encoder service. Reranking is always best-effort: when the
// backend is unconfigured or misbehaves, the original order stands.
type CrossEncoderReranker struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewCrossEncoderReranker(url string, timeout time.Duration, logger *slog.Logger) *CrossEncoderReranker {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CrossEncoderReranker{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Rerank returns indices sorted by descending backend score, ties
// keeping original relative order. With no backend configured it
// returns the identity permutation.
func (r *CrossEncoderReranker) Rerank(ctx context.Context, query string, texts []string) []int {
	perm := identity(len(texts))
	if r.url == "" || len(texts) == 0 {
		return perm
	}

	scores, err := r.score(ctx, query, texts)
	if err != nil {
		r.logger.Warn("rerank failed, keeping retrieval order", "error", err)
		return perm
	}

	sort.SliceStable(perm, func(i, j int) bool {
		return scores[perm[i]] > scores[perm[j]]
	})
	return perm
}

func (r *CrossEncoderReranker) score(ctx context.Context, query string, texts []string) ([]float64, error) {
	body, err := json.Marshal(rerankRequest{Query: query, Texts: texts})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank status %d", resp.StatusCode)
	}
	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Scores) != len(texts) {
		return nil, fmt.Errorf("got %d scores for %d texts", len(parsed.Scores), len(texts))
	}
	return parsed.Scores, nil
}

func identity(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrEmbeddingService marks failures talking to the embedding backend:
// unreachable, timed out, or a response missing the vector array.
var ErrEmbeddingService = errors.New("embedding service")

// Embedder converts a batch of texts into one vector per text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// HTTPEmbedder calls the embedding backend over its batch endpoint.
// It does not retry and does not sub-batch; the caller decides what a
// failure means for the whole operation.
type HTTPEmbedder struct {
	url    string
	client *http.Client
}

func NewHTTPEmbedder(url string, timeout time.Duration) *HTTPEmbedder {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEmbedder{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type embeddingRequest struct {
	Inputs []string `json:"inputs"`
}

type embeddingResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed returns exactly one vector per input text, index-aligned.
func (e *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	body, err := json.Marshal(embeddingRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", ErrEmbeddingService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingService, resp.StatusCode, detail)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrEmbeddingService, err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrEmbeddingService, len(parsed.Embeddings), len(texts))
	}
	return parsed.Embeddings, nil
}

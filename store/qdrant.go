package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// QdrantStore is a minimal REST client to Qdrant. Collections are
// created with cosine distance; the configured dimension must match
// the embedding backend's output.
type QdrantStore struct {
	url        string
	collection string
	dimension  int
	client     *http.Client
}

type QdrantConfig struct {
	URL        string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &QdrantStore{
		url:        cfg.URL,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection if it does not exist. Any
// failure of the existence check is treated as "absent", so only a
// failed creation surfaces as an error.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.collectionURL(), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err == nil {
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode < 300 {
			return nil
		}
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimension,
			"distance": "Cosine",
		},
	}
	return s.putJSON(ctx, s.collectionURL(), body)
}

// Upsert writes all points in one request with wait=true, so a search
// issued after Upsert returns observes the new points.
func (s *QdrantStore) Upsert(ctx context.Context, points []Point) error {
	body := map[string]any{"points": points}
	return s.putJSON(ctx, s.collectionURL()+"/points?wait=true", body)
}

func (s *QdrantStore) Search(ctx context.Context, vector []float64, topK int, category string) ([]Hit, error) {
	req := map[string]any{
		"vector":       vector,
		"top":          topK,
		"with_payload": true,
		"with_vector":  false,
	}
	if category != "" {
		req["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "category", "match": map[string]any{"value": category}},
			},
		}
	}
	var resp struct {
		Result []struct {
			ID      any     `json:"id"`
			Score   float64 `json:"score"`
			Payload Payload `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, s.collectionURL()+"/points/search", req, &resp); err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, Hit{ID: fmt.Sprint(r.ID), Score: r.Score, Payload: r.Payload})
	}
	return hits, nil
}

func (s *QdrantStore) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

func (s *QdrantStore) putJSON(ctx context.Context, url string, body any) error {
	return s.doJSON(ctx, http.MethodPut, url, body, nil)
}

func (s *QdrantStore) postJSON(ctx context.Context, url string, body any, out any) error {
	return s.doJSON(ctx, http.MethodPost, url, body, out)
}

func (s *QdrantStore) doJSON(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

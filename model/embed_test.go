package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedAlignment(t *testing.T) {
	var gotInputs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotInputs = req.Inputs

		out := make([][]float64, len(req.Inputs))
		for i := range out {
			out[i] = []float64{float64(i), 0.5}
		}
		json.NewEncoder(w).Encode(embeddingResponse{Embeddings: out})
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, time.Second)
	texts := []string{"alpha", "beta", "gamma"}
	vectors, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, texts, gotInputs)
	require.Len(t, vectors, 3)
	for i, vec := range vectors {
		assert.Equal(t, float64(i), vec[0], "vector %d must align with input %d", i, i)
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingResponse{Embeddings: [][]float64{{1}}})
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, time.Second)
	_, err := e.Embed(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrEmbeddingService)
}

func TestEmbedBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, time.Second)
	_, err := e.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrEmbeddingService)
}

func TestEmbedUnreachable(t *testing.T) {
	e := NewHTTPEmbedder("http://127.0.0.1:1/embed", 200*time.Millisecond)
	_, err := e.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrEmbeddingService)
}

func TestEmbedMissingVectorArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, time.Second)
	_, err := e.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrEmbeddingService)
}

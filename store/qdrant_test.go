package store

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

// fakeQdrant records collection lifecycle and point writes.
type fakeQdrant struct {
	exists      bool
	creations   int
	upsertBody  map[string]any
	upsertQuery string
	searchBody  map[string]any
}

func (f *fakeQdrant) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/docs":
			if !f.exists {
				http.Error(w, `{"status":{"error":"not found"}}`, http.StatusNotFound)
				return
			}
			w.Write([]byte(`{"result":{}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			f.creations++
			f.exists = true
			w.Write([]byte(`{"result":true}`))
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points":
			f.upsertQuery = r.URL.RawQuery
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f.upsertBody))
			w.Write([]byte(`{"result":{"status":"completed"}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/collections/docs/points/search":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f.searchBody))
			w.Write([]byte(`{"result":[
				{"id":"p1","score":0.93,"payload":{"document_id":"d1","category":"law","title":"T","text":"first"}},
				{"id":"p2","score":0.71,"payload":{"document_id":"d1","category":"law","title":"T","text":"second"}}
			]}`))
		default:
			http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusTeapot)
		}
	})
}

func newTestStore(url string) *QdrantStore {
	return NewQdrantStore(QdrantConfig{
		URL:        url,
		Collection: "docs",
		Dimension:  4,
		Timeout:    time.Second,
	})
}

func TestEnsureCollectionIdempotent(t *testing.T) {
	fake := &fakeQdrant{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	s := newTestStore(srv.URL)
	require.NoError(t, s.EnsureCollection(context.Background()))
	require.NoError(t, s.EnsureCollection(context.Background()))

	assert.Equal(t, 1, fake.creations, "second call must observe existence and not create")
}

func TestEnsureCollectionSkipsCreationWhenPresent(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	s := newTestStore(srv.URL)
	require.NoError(t, s.EnsureCollection(context.Background()))
	assert.Zero(t, fake.creations)
}

func TestEnsureCollectionGeometry(t *testing.T) {
	var created map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.Write([]byte(`{"result":true}`))
	}))
	defer srv.Close()

	s := newTestStore(srv.URL)
	require.NoError(t, s.EnsureCollection(context.Background()))

	vectors := created["vectors"].(map[string]any)
	assert.Equal(t, float64(4), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestUpsertWaitsForVisibility(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	s := newTestStore(srv.URL)
	points := []Point{{
		ID:      "p1",
		Payload: Payload{DocumentID: "d1", Category: "law", Title: "T", Text: "first"},
		Vector:  []float64{0.1, 0.2, 0.3, 0.4},
	}}
	require.NoError(t, s.Upsert(context.Background(), points))

	assert.Equal(t, "wait=true", fake.upsertQuery)
	sent := fake.upsertBody["points"].([]any)
	require.Len(t, sent, 1)
	point := sent[0].(map[string]any)
	assert.Equal(t, "p1", point["id"])
	payload := point["payload"].(map[string]any)
	assert.Equal(t, "d1", payload["document_id"])
	assert.Equal(t, "law", payload["category"])
}

func TestSearchRequestShape(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	s := newTestStore(srv.URL)
	hits, err := s.Search(context.Background(), []float64{1, 0, 0, 0}, 20, "law")
	require.NoError(t, err)

	assert.Equal(t, float64(20), fake.searchBody["top"])
	assert.Equal(t, true, fake.searchBody["with_payload"])
	assert.Equal(t, false, fake.searchBody["with_vector"])

	filter := fake.searchBody["filter"].(map[string]any)
	must := filter["must"].([]any)
	require.Len(t, must, 1)
	cond := must[0].(map[string]any)
	assert.Equal(t, "category", cond["key"])
	assert.Equal(t, map[string]any{"value": "law"}, cond["match"])

	require.Len(t, hits, 2)
	assert.Equal(t, "p1", hits[0].ID)
	assert.Equal(t, 0.93, hits[0].Score)
	assert.Equal(t, "first", hits[0].Payload.Text)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestSearchOmitsFilterWithoutCategory(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	s := newTestStore(srv.URL)
	_, err := s.Search(context.Background(), []float64{1, 0, 0, 0}, 5, "")
	require.NoError(t, err)

	_, hasFilter := fake.searchBody["filter"]
	assert.False(t, hasFilter)
}

func TestSearchEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[]}`))
	}))
	defer srv.Close()

	s := newTestStore(srv.URL)
	hits, err := s.Search(context.Background(), []float64{1}, 5, "")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

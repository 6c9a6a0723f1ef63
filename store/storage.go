package store

import "context"

// Payload is the metadata persisted alongside each vector.
type Payload struct {
	DocumentID string `json:"document_id"`
	Category   string `json:"category"`
	Title      string `json:"title"`
	Text       string `json:"text"`
}

// Point is the persisted unit in the vector store, one per chunk.
type Point struct {
	ID      string    `json:"id"`
	Payload Payload   `json:"payload"`
	Vector  []float64 `json:"vector"`
}

// Hit is a point returned by a similarity search, highest score first.
type Hit struct {
	ID      string
	Score   float64
	Payload Payload
}

// VectorStore persists chunk vectors and supports filtered
// nearest-neighbor search. Implementations must make upserted points
// visible to searches before Upsert returns.
type VectorStore interface {
	// EnsureCollection provisions the collection if it does not exist.
	// Idempotent, safe to call before every operation.
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []Point) error
	// Search returns up to topK hits ordered by descending similarity.
	// An empty category means no filter. Zero hits is not an error.
	Search(ctx context.Context, vector []float64, topK int, category string) ([]Hit, error)
}

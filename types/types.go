package types

import (
	"github.com/google/uuid"
)

// Document is the unit of ingestion. It is created once and never
// updated; re-ingesting the same text produces a new Document.
type Document struct {
	ID       uuid.UUID
	Category string
	Title    string
	Text     string
}

// Chunk is a bounded slice of a Document's text, in original order.
// Category and Title are copied from the parent at creation time.
type Chunk struct {
	ID       uuid.UUID
	DocID    uuid.UUID
	Index    int
	Category string
	Title    string
	Content  string
}

// Citation identifies the provenance of a piece of context used in an
// answer. Citation order matches the [N] markers in the prompt, 1-indexed.
type Citation struct {
	DocumentID string `json:"document_id"`
	ChunkID    string `json:"chunk_id"`
}

type IngestResult struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

type ChatAnswer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

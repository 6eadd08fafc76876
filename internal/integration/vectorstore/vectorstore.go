package vectorstore

import "errors"

const (
	// PayloadContent holds the chunk text alongside its metadata.
	PayloadContent = "content"
	// PayloadDocumentID is the metadata key used for per-document filtering.
	PayloadDocumentID = "document_id"
	// PayloadChunkID keeps the caller's id; Qdrant only accepts uuids.
	PayloadChunkID = "chunk_id"
)

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrLengthMismatch    = errors.New("points and vectors length mismatch")
)

// Point is a chunk ready to be stored.
type Point struct {
	ID       string
	Vector   []float64
	Content  string
	Metadata map[string]any
}

// Match is a stored point scored against a query vector.
// Score is cosine similarity, higher is closer.
type Match struct {
	ID       string
	Content  string
	Metadata map[string]any
	Score    float64
}

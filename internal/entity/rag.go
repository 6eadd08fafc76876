package entity

// RetrievedChunk is one ranked search hit returned by the retrieval collaborator.
type RetrievedChunk struct {
	ID              string         `json:"id"`
	Content         string         `json:"content"`
	Metadata        map[string]any `json:"metadata"`
	Distance        float64        `json:"distance"`
	SimilarityScore float64        `json:"similarity_score"`
}

// Filename returns the source filename recorded at indexing time.
func (c RetrievedChunk) Filename() string {
	if v, ok := c.Metadata["filename"].(string); ok && v != "" {
		return v
	}
	return "Unknown"
}

// ChunkIndex returns the chunk position inside its document.
func (c RetrievedChunk) ChunkIndex() int {
	switch v := c.Metadata["chunk_index"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// SearchFilter narrows retrieval to a single document when DocumentID is set.
type SearchFilter struct {
	DocumentID string
}

// IndexChunk is a chunk of extracted text prepared for indexing.
type IndexChunk struct {
	DocumentID string
	Index      int
	Content    string
	Metadata   map[string]any
}

type IndexStats struct {
	Backend        string `json:"backend"`
	Collection     string `json:"collection"`
	TotalChunks    int    `json:"total_chunks"`
	EmbeddingModel string `json:"embedding_model"`
}

// PackedContext is the bounded context window handed to the generator.
type PackedContext struct {
	Text    string       `json:"text"`
	Sources []SourceInfo `json:"sources"`
}

type SourceInfo struct {
	Filename        string  `json:"filename"`
	ChunkIndex      int     `json:"chunk_index"`
	SimilarityScore float64 `json:"similarity_score"`
	Partial         bool    `json:"partial"`
}

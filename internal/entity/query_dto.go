package entity

import "time"

// QueryRequest is a question about the indexed documents.
type QueryRequest struct {
	Question   string           `json:"question"`
	Level      ExplanationLevel `json:"level"`
	DocumentID string           `json:"document_id,omitempty"`
	UseCache   *bool            `json:"use_cache,omitempty"`
}

// CacheEnabled reports whether the caller allows cached answers. Defaults to true.
func (r *QueryRequest) CacheEnabled() bool {
	return r.UseCache == nil || *r.UseCache
}

func (r *QueryRequest) Normalize() {
	if r.Level == "" {
		r.Level = LevelUndergraduate
	}
}

// QueryResult is the answer for the synchronous query path.
// Cached is stored false and only flipped on the copy returned from a cache hit.
type QueryResult struct {
	Answer          string        `json:"answer"`
	Level           string        `json:"level"`
	SourceDocuments int           `json:"source_documents"`
	ContextUsed     string        `json:"context_used"`
	Cached          bool          `json:"cached"`
	Sources         []SourceInfo  `json:"sources"`
	QueryMetadata   QueryMetadata `json:"query_metadata"`
}

type QueryMetadata struct {
	QuestionLength int       `json:"question_length"`
	ContextLength  int       `json:"context_length"`
	ResponseLength int       `json:"response_length"`
	ProcessingTime time.Time `json:"processing_time"`
	DurationMS     int64     `json:"duration_ms"`
}

type StreamStatus string

const (
	StreamStarted   StreamStatus = "streaming_started"
	StreamStreaming StreamStatus = "streaming"
	StreamCompleted StreamStatus = "completed"
	StreamNoContext StreamStatus = "no_context"
	StreamError     StreamStatus = "error"
)

// StreamFrame is one unit of the streaming response.
type StreamFrame struct {
	Chunk    string         `json:"chunk"`
	Metadata StreamMetadata `json:"metadata"`
}

// StreamMetadata carries the per-status fields of a frame. Pointer fields are
// set only by the statuses that define them, so zero counts stay visible.
type StreamMetadata struct {
	Level           string       `json:"level"`
	Status          StreamStatus `json:"status"`
	SourceDocuments *int         `json:"source_documents,omitempty"`
	ContextLength   *int         `json:"context_length,omitempty"`
	ChunkNumber     int          `json:"chunk_number,omitempty"`
	TotalChunks     *int         `json:"total_chunks,omitempty"`
	Error           string       `json:"error,omitempty"`
}

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error      string    `json:"error"`
	Detail     string    `json:"detail,omitempty"`
	RetryAfter int       `json:"retry_after,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

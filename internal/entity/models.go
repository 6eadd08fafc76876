package entity

import "time"

const (
	ProcessingStatusCompleted = "completed"
	// ProcessingStatusUnindexed marks registry records whose chunks are no
	// longer in the vector index, e.g. after a restart with an in-memory store.
	ProcessingStatusUnindexed = "unindexed"
)

// Document is the registry record of an ingested upload.
// ID is the stored filename produced by the blob store.
type Document struct {
	ID               string    `json:"document_id"`
	OriginalFilename string    `json:"original_filename"`
	FileType         string    `json:"file_type"`
	FileSize         int64     `json:"file_size"`
	ChunkCount       int       `json:"chunk_count"`
	ChunkIDs         []string  `json:"chunk_ids"`
	WordCount        int       `json:"word_count"`
	CharCount        int       `json:"char_count"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProcessingResult is cached under document:<id>:processing after ingestion.
type ProcessingResult struct {
	DocumentID       string   `json:"document_id"`
	OriginalFilename string   `json:"original_filename"`
	FileSize         int64    `json:"file_size"`
	ChunksCreated    int      `json:"chunk_created"`
	TotalWords       int      `json:"total_words"`
	TotalChars       int      `json:"total_chars"`
	FileType         string   `json:"file_type"`
	ProcessingStatus string   `json:"processing_status"`
	ChunkIDs         []string `json:"chunk_ids"`
}

// ExtractedText is the outcome of text extraction for one file.
type ExtractedText struct {
	Text           string
	DocType        string
	WordCount      int
	CharCount      int
	ReadingMinutes int
}

// FileInfo describes a blob in the upload directory.
type FileInfo struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Extension  string    `json:"extension"`
}

type DocumentUploadResponse struct {
	DocumentID       string `json:"document_id"`
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	FileType         string `json:"file_type"`
	ChunksCreated    int    `json:"chunks_created"`
	ProcessingStatus string `json:"processing_status"`
	Message          string `json:"message"`
	RequestID        string `json:"request_id"`
}

type DocumentInfo struct {
	DocumentID       string     `json:"document_id"`
	Filename         string     `json:"filename"`
	FileSize         int64      `json:"file_size"`
	CreatedAt        time.Time  `json:"created_at"`
	ModifiedAt       *time.Time `json:"modified_at,omitempty"`
	ChunkCount       int        `json:"chunk_count"`
	ProcessingStatus string     `json:"processing_status"`
}

type ListDocumentsResponse struct {
	Documents []*DocumentInfo `json:"documents"`
}

type DeleteDocumentResponse struct {
	DocumentID    string `json:"document_id"`
	Status        string `json:"status"`
	ChunksRemoved int    `json:"chunks_removed"`
	CacheCleared  int    `json:"cache_entries_cleared"`
}

type StorageStats struct {
	TotalFiles      int     `json:"total_files"`
	TotalSizeBytes  int64   `json:"total_size_bytes"`
	TotalSizeMB     float64 `json:"total_size_mb"`
	UploadDirectory string  `json:"upload_directory"`
}

type CacheStats struct {
	Backend string `json:"backend"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
	Sets    int64  `json:"sets"`
	Errors  int64  `json:"errors"`
	Entries int    `json:"entries"`
}

type SystemStats struct {
	VectorStore IndexStats   `json:"vector_store"`
	Storage     StorageStats `json:"storage"`
	Cache       CacheStats   `json:"cache"`
	Documents   int          `json:"documents"`
	Status      string       `json:"status"`
	Timestamp   time.Time    `json:"timestamp"`
}

type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

package entity

import "errors"

// Domain errors
var (
	// Admission errors
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrTooManyConcurrent = errors.New("too many concurrent requests")

	// Validation errors
	ErrValidation       = errors.New("validation failed")
	ErrEmptyQuestion    = errors.New("question is empty")
	ErrQuestionLength   = errors.New("question length out of range")
	ErrInvalidLevel     = errors.New("invalid explanation level")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")

	// File errors
	ErrInvalidFile      = errors.New("invalid file")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")
	ErrDocumentTooShort = errors.New("too short or empty document")

	// Document errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrExtractionFailed = errors.New("text extraction failed")

	// Collaborator errors
	ErrRetrievalFailed  = errors.New("retrieval failed")
	ErrGenerationFailed = errors.New("generation failed")
	ErrIndexingFailed   = errors.New("indexing failed")
	ErrStorageFailure   = errors.New("storage failure")
	ErrCacheFailure     = errors.New("cache failure")
)

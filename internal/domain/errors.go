package domain

import "errors"

var (
	// ErrValidation signals malformed input (empty text, bad parameters).
	ErrValidation = errors.New("validation failed")
	// ErrDocumentNotFound signals a missing document or status entry.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDuplicateDocument signals an already-registered document id.
	ErrDuplicateDocument = errors.New("document already exists")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrStoreCorrupt signals an unreadable or inconsistent store snapshot.
	ErrStoreCorrupt = errors.New("store snapshot corrupt")
	// ErrIndexCorrupt signals an unreadable or inconsistent index snapshot.
	ErrIndexCorrupt = errors.New("index snapshot corrupt")
	// ErrExtraction signals a text extraction failure.
	ErrExtraction = errors.New("text extraction failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrProcessingTimeout signals a document that exceeded its processing budget.
	ErrProcessingTimeout = errors.New("processing timed out")
)

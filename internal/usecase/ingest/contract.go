package ingest

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/chunker"
	"github.com/kailas-cloud/docdex/internal/domain"
)

// DocumentStore commits fully embedded documents and reports existing ones.
type DocumentStore interface {
	AddDocument(doc domain.Document) error
	GetDocument(id string) (domain.Document, error)
}

// Chunker segments document text into spans.
type Chunker interface {
	Chunk(text string) []chunker.Span
}

// Embedder vectorizes chunk text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

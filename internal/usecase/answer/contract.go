package answer

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// DocumentReader checks document existence and reads committed text.
type DocumentReader interface {
	GetDocument(id string) (domain.Document, error)
}

// Searcher retrieves the nearest chunks for a query vector, optionally
// scoped to a single document.
type Searcher interface {
	Search(query []float32, topK int, scope string) ([]domain.ScoredChunk, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

package summary

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// DocumentReader reads committed documents.
type DocumentReader interface {
	GetDocument(id string) (domain.Document, error)
}

// Summarizer distills full document text into a structured summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (domain.StructuredSummary, error)
}

// Package summary produces structured summaries of committed documents.
package summary

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Service summarizes documents by id.
type Service struct {
	docs DocumentReader
	sum  Summarizer
}

// New creates a summary service.
func New(docs DocumentReader, sum Summarizer) *Service {
	return &Service{docs: docs, sum: sum}
}

// GetSummary loads the document and summarizes its full text. Deterministic
// for an unchanged document.
func (s *Service) GetSummary(ctx context.Context, documentID string) (domain.StructuredSummary, error) {
	if documentID == "" {
		return domain.StructuredSummary{}, fmt.Errorf("%w: no document selected", domain.ErrDocumentNotFound)
	}
	doc, err := s.docs.GetDocument(documentID)
	if err != nil {
		return domain.StructuredSummary{}, fmt.Errorf("get document: %w", err)
	}

	result, err := s.sum.Summarize(ctx, doc.FullText)
	if err != nil {
		return domain.StructuredSummary{}, fmt.Errorf("summarize document %q: %w", documentID, err)
	}
	return result, nil
}

// Package document exposes committed-document management: lookup, removal,
// and full-state snapshots on disk.
package document

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Service manages committed documents and snapshot persistence.
type Service struct {
	store        Store
	snapshotPath string
	log          *zap.Logger
}

// New creates a document service writing snapshots to snapshotPath.
func New(store Store, snapshotPath string, log *zap.Logger) *Service {
	return &Service{store: store, snapshotPath: snapshotPath, log: log}
}

// Get returns a committed document by id.
func (s *Service) Get(id string) (domain.Document, error) {
	if id == "" {
		return domain.Document{}, fmt.Errorf("%w: empty document id", domain.ErrDocumentNotFound)
	}
	doc, err := s.store.GetDocument(id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Remove deletes a document and its index entries. Removing an absent
// document is a no-op.
func (s *Service) Remove(id string) {
	s.store.RemoveDocument(id)
	s.log.Info("document removed", zap.String("document_id", id))
}

// SaveState writes the full store state to the configured snapshot path.
func (s *Service) SaveState() error {
	if s.snapshotPath == "" {
		return fmt.Errorf("%w: snapshot path is not configured", domain.ErrValidation)
	}
	if err := s.store.SaveAll(s.snapshotPath); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	docs, chunks := s.store.Counts()
	s.log.Info("state saved",
		zap.String("path", s.snapshotPath),
		zap.Int("documents", docs),
		zap.Int("chunks", chunks),
	)
	return nil
}

// LoadState replaces the store state with the configured snapshot. A failed
// load leaves the current state untouched.
func (s *Service) LoadState() error {
	if s.snapshotPath == "" {
		return fmt.Errorf("%w: snapshot path is not configured", domain.ErrValidation)
	}
	if err := s.store.LoadAll(s.snapshotPath); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	docs, chunks := s.store.Counts()
	s.log.Info("state loaded",
		zap.String("path", s.snapshotPath),
		zap.Int("documents", docs),
		zap.Int("chunks", chunks),
	)
	return nil
}

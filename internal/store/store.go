// Package store owns all committed documents and the shared vector index.
// It is the single writer surface for document state: mutations go through
// AddDocument/RemoveDocument, reads through GetDocument/Search.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/index"
)

// Store holds documents and their vectors. Vectors live only in the index;
// the stored chunk copies carry text and offsets, not embeddings.
// Safe for concurrent use.
type Store struct {
	dimension int // fixed at New; LoadAll swaps the index but never the dimension

	mu    sync.RWMutex
	docs  map[string]*domain.Document
	index *index.Index
}

// New creates an empty store with a fixed vector dimension.
func New(dimension int) (*Store, error) {
	ix, err := index.New(dimension)
	if err != nil {
		return nil, err
	}
	return &Store{
		dimension: dimension,
		docs:      make(map[string]*domain.Document),
		index:     ix,
	}, nil
}

// Dimension returns the vector dimension shared by all documents.
func (s *Store) Dimension() int {
	return s.dimension
}

// Counts returns the number of committed documents and indexed chunks.
func (s *Store) Counts() (documents, chunks int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), s.index.Len()
}

// AddDocument commits a document and all its chunk vectors as one unit.
// Every chunk is validated before anything is inserted, so a dimension
// mismatch or malformed chunk commits nothing. Fails with
// ErrDuplicateDocument if the id is already present.
func (s *Store) AddDocument(doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", domain.ErrValidation)
	}
	if doc.FullText == "" {
		return fmt.Errorf("%w: document %s has empty text", domain.ErrValidation, doc.ID)
	}
	if len(doc.Chunks) == 0 {
		return fmt.Errorf("%w: document %s has no chunks", domain.ErrValidation, doc.ID)
	}
	for i := range doc.Chunks {
		if err := doc.Chunks[i].Validate(s.dimension); err != nil {
			return err
		}
		if doc.Chunks[i].DocumentID != doc.ID {
			return fmt.Errorf("%w: chunk %s tagged with document %s, expected %s",
				domain.ErrValidation, doc.Chunks[i].ID, doc.Chunks[i].DocumentID, doc.ID)
		}
		if doc.Chunks[i].Ordinal != i {
			return fmt.Errorf("%w: chunk %s has ordinal %d at position %d",
				domain.ErrValidation, doc.Chunks[i].ID, doc.Chunks[i].Ordinal, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateDocument, doc.ID)
	}

	for i := range doc.Chunks {
		c := &doc.Chunks[i]
		if err := s.index.Insert(c.ID, doc.ID, c.Ordinal, c.Embedding); err != nil {
			// Roll back partial inserts; Remove is atomic per document.
			s.index.Remove(doc.ID)
			return fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
	}

	stored := domain.Document{
		ID:        doc.ID,
		FullText:  doc.FullText,
		Chunks:    make([]domain.Chunk, len(doc.Chunks)),
		CreatedAt: doc.CreatedAt,
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	for i, c := range doc.Chunks {
		c.Embedding = nil // vectors are owned by the index
		stored.Chunks[i] = c
	}
	s.docs[doc.ID] = &stored
	return nil
}

// GetDocument returns a copy of the committed document. Chunk copies carry
// no embeddings.
func (s *Store) GetDocument(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	out := *doc
	out.Chunks = make([]domain.Chunk, len(doc.Chunks))
	copy(out.Chunks, doc.Chunks)
	return out, nil
}

// RemoveDocument deletes a document and its vectors. Idempotent: removing an
// unknown id is a no-op.
func (s *Store) RemoveDocument(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return
	}
	delete(s.docs, id)
	s.index.Remove(id)
}

// Search runs a scoped nearest-neighbor query and resolves hits to chunks.
func (s *Store) Search(query []float32, topK int, scope string) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits, err := s.index.Search(query, topK, scope)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		doc, ok := s.docs[h.DocumentID]
		if !ok || h.Ordinal >= len(doc.Chunks) {
			// Index and document map are mutated under the same lock, so
			// this indicates snapshot corruption rather than a race.
			return nil, fmt.Errorf("%w: chunk %s has no backing document", domain.ErrStoreCorrupt, h.ChunkID)
		}
		out = append(out, domain.ScoredChunk{
			Chunk: doc.Chunks[h.Ordinal],
			Score: h.Score,
		})
	}
	return out, nil
}

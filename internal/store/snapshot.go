package store

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/index"
)

const (
	snapshotMagic   = "docdex-store"
	snapshotVersion = 1
)

// snapshot is the on-disk layout: raw document texts plus chunk metadata,
// and the index snapshot carrying every vector, as one consistent unit.
type snapshot struct {
	Magic     string
	Version   int
	CreatedAt time.Time
	Documents []domain.Document
	Index     index.Snapshot
}

// SaveAll serializes every document and the vector index to path as one
// durable unit, written atomically via a temp file.
func (s *Store) SaveAll(path string) error {
	s.mu.RLock()
	snap := snapshot{
		Magic:     snapshotMagic,
		Version:   snapshotVersion,
		CreatedAt: time.Now().UTC(),
		Documents: make([]domain.Document, 0, len(s.docs)),
	}
	for _, doc := range s.docs {
		out := *doc
		out.Chunks = make([]domain.Chunk, len(doc.Chunks))
		copy(out.Chunks, doc.Chunks)
		snap.Documents = append(snap.Documents, out)
	}
	snap.Index = s.index.Snapshot()
	s.mu.RUnlock()

	if err := writeFileAtomic(path, func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(snap)
	}); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

// LoadAll restores the store from a snapshot file. The snapshot is decoded
// and validated into scratch state first; a corrupted or partial snapshot
// fails with ErrStoreCorrupt and leaves the current in-memory state
// untouched.
func (s *Store) LoadAll(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open store snapshot: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("%w: decode: %v", domain.ErrStoreCorrupt, err)
	}
	if snap.Magic != snapshotMagic {
		return fmt.Errorf("%w: bad magic %q", domain.ErrStoreCorrupt, snap.Magic)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported snapshot version %d", domain.ErrStoreCorrupt, snap.Version)
	}

	scratch, err := index.New(s.dimension)
	if err != nil {
		return err
	}
	if err := scratch.Restore(snap.Index); err != nil {
		return fmt.Errorf("%w: index section: %v", domain.ErrStoreCorrupt, err)
	}

	docs := make(map[string]*domain.Document, len(snap.Documents))
	chunkCount := 0
	for i := range snap.Documents {
		doc := snap.Documents[i]
		if doc.ID == "" || doc.FullText == "" {
			return fmt.Errorf("%w: document %d is incomplete", domain.ErrStoreCorrupt, i)
		}
		if _, dup := docs[doc.ID]; dup {
			return fmt.Errorf("%w: duplicate document %s", domain.ErrStoreCorrupt, doc.ID)
		}
		for j := range doc.Chunks {
			c := &doc.Chunks[j]
			if c.Ordinal != j || c.DocumentID != doc.ID || c.EndOffset <= c.StartOffset {
				return fmt.Errorf("%w: document %s chunk %d is inconsistent", domain.ErrStoreCorrupt, doc.ID, j)
			}
		}
		docs[doc.ID] = &doc
		chunkCount += len(doc.Chunks)
	}

	// Every vector must belong to a known document, and vice versa.
	if scratch.Len() != chunkCount {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrStoreCorrupt, scratch.Len(), chunkCount)
	}
	for _, e := range snap.Index.Entries {
		doc, ok := docs[e.DocumentID]
		if !ok || e.Ordinal >= len(doc.Chunks) || doc.Chunks[e.Ordinal].ID != e.ChunkID {
			return fmt.Errorf("%w: vector %s has no backing chunk", domain.ErrStoreCorrupt, e.ChunkID)
		}
	}

	s.mu.Lock()
	s.docs = docs
	s.index = scratch
	s.mu.Unlock()
	return nil
}

// writeFileAtomic writes via a temp file in the target directory and renames
// into place, so readers never observe a partial file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}

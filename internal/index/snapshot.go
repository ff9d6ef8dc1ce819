package index

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/docdex/internal/domain"
)

const (
	snapshotMagic   = "docdex-index"
	snapshotVersion = 1
)

// Snapshot is the serializable state of an index.
type Snapshot struct {
	Magic     string
	Version   int
	Dimension int
	Entries   []Entry
}

// Snapshot captures the full index state under a read lock.
func (ix *Index) Snapshot() Snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	entries := make([]Entry, len(ix.entries))
	copy(entries, ix.entries)
	return Snapshot{
		Magic:     snapshotMagic,
		Version:   snapshotVersion,
		Dimension: ix.dimension,
		Entries:   entries,
	}
}

// Restore replaces the index contents with a snapshot. The snapshot is
// validated in full before anything is swapped in, so a corrupt snapshot
// leaves the index untouched.
func (ix *Index) Restore(snap Snapshot) error {
	if err := snap.validate(ix.dimension); err != nil {
		return err
	}

	entries := make([]Entry, len(snap.Entries))
	copy(entries, snap.Entries)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.rebuild(entries)
	return nil
}

func (snap Snapshot) validate(dimension int) error {
	if snap.Magic != snapshotMagic {
		return fmt.Errorf("%w: bad magic %q", domain.ErrIndexCorrupt, snap.Magic)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported snapshot version %d", domain.ErrIndexCorrupt, snap.Version)
	}
	if snap.Dimension != dimension {
		return fmt.Errorf("%w: snapshot dimension %d, index configured for %d",
			domain.ErrIndexCorrupt, snap.Dimension, dimension)
	}
	seen := make(map[string]struct{}, len(snap.Entries))
	for i, e := range snap.Entries {
		if e.ChunkID == "" || e.DocumentID == "" {
			return fmt.Errorf("%w: entry %d has empty ids", domain.ErrIndexCorrupt, i)
		}
		if _, dup := seen[e.ChunkID]; dup {
			return fmt.Errorf("%w: duplicate chunk id %s", domain.ErrIndexCorrupt, e.ChunkID)
		}
		seen[e.ChunkID] = struct{}{}
		if len(e.Vector) != snap.Dimension {
			return fmt.Errorf("%w: entry %s has %d dimensions, snapshot declares %d",
				domain.ErrIndexCorrupt, e.ChunkID, len(e.Vector), snap.Dimension)
		}
	}
	return nil
}

// Save serializes the index to path, writing atomically via a temp file.
func (ix *Index) Save(path string) error {
	snap := ix.Snapshot()
	if err := writeFileAtomic(path, func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(snap)
	}); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// Load replaces the index contents from a snapshot file. A file that cannot
// be decoded, or whose dimension differs from the index's, fails with
// ErrIndexCorrupt and leaves the current contents untouched.
func (ix *Index) Load(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open index snapshot: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("%w: decode: %v", domain.ErrIndexCorrupt, err)
	}
	return ix.Restore(snap)
}

// writeFileAtomic writes via a temp file in the target directory and renames
// into place, so readers never observe a partial file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
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

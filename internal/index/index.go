// Package index implements an in-process vector index with brute-force
// cosine search, per-document scoping, and snapshot persistence.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Entry is one indexed vector with its chunk and document tags.
type Entry struct {
	ChunkID    string
	DocumentID string
	Ordinal    int
	Vector     []float32
}

// Hit is a single search result.
type Hit struct {
	ChunkID    string
	DocumentID string
	Ordinal    int
	Score      float64
}

// Index stores fixed-dimension vectors keyed by chunk id. Insertion is
// append-only; removal is by document and atomic with respect to searches.
// Safe for concurrent use.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []Entry
	norms     []float64
	byChunk   map[string]int   // chunk id -> position in entries
	byDoc     map[string][]int // document id -> positions in entries
}

// New creates an index with a fixed vector dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrValidation, dimension)
	}
	return &Index{
		dimension: dimension,
		byChunk:   make(map[string]int),
		byDoc:     make(map[string][]int),
	}, nil
}

// Dimension returns the fixed vector dimension.
func (ix *Index) Dimension() int {
	return ix.dimension
}

// Len returns the number of indexed vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Insert appends a vector tagged with its chunk and document ids.
// The vector is copied; the index never aliases caller memory.
func (ix *Index) Insert(chunkID, documentID string, ordinal int, vector []float32) error {
	if chunkID == "" || documentID == "" {
		return fmt.Errorf("%w: chunk id and document id are required", domain.ErrValidation)
	}
	if len(vector) != ix.dimension {
		return fmt.Errorf("%w: got %d dimensions, index has %d",
			domain.ErrVectorDimMismatch, len(vector), ix.dimension)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.byChunk[chunkID]; ok {
		return fmt.Errorf("%w: chunk %s already indexed", domain.ErrValidation, chunkID)
	}

	v := make([]float32, len(vector))
	copy(v, vector)

	pos := len(ix.entries)
	ix.entries = append(ix.entries, Entry{
		ChunkID:    chunkID,
		DocumentID: documentID,
		Ordinal:    ordinal,
		Vector:     v,
	})
	ix.norms = append(ix.norms, norm(v))
	ix.byChunk[chunkID] = pos
	ix.byDoc[documentID] = append(ix.byDoc[documentID], pos)
	return nil
}

// Search returns up to topK entries ranked by descending cosine similarity.
// If scope is non-empty, only that document's chunks participate. Ties break
// by lower ordinal, then lexicographically lower chunk id.
func (ix *Index) Search(query []float32, topK int, scope string) ([]Hit, error) {
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrVectorDimMismatch, len(query), ix.dimension)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrValidation, topK)
	}

	qnorm := norm(query)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var candidates []int
	if scope != "" {
		candidates = ix.byDoc[scope]
	} else {
		candidates = make([]int, len(ix.entries))
		for i := range ix.entries {
			candidates[i] = i
		}
	}

	hits := make([]Hit, 0, len(candidates))
	for _, pos := range candidates {
		e := &ix.entries[pos]
		hits = append(hits, Hit{
			ChunkID:    e.ChunkID,
			DocumentID: e.DocumentID,
			Ordinal:    e.Ordinal,
			Score:      cosine(query, qnorm, e.Vector, ix.norms[pos]),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Ordinal != hits[j].Ordinal {
			return hits[i].Ordinal < hits[j].Ordinal
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Remove deletes every chunk of the given document atomically and returns
// the number of removed entries. Removing an unknown document is a no-op.
func (ix *Index) Remove(documentID string) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	positions, ok := ix.byDoc[documentID]
	if !ok {
		return 0
	}
	removed := len(positions)

	entries := make([]Entry, 0, len(ix.entries)-removed)
	for _, e := range ix.entries {
		if e.DocumentID != documentID {
			entries = append(entries, e)
		}
	}
	ix.rebuild(entries)
	return removed
}

// rebuild replaces the entry set and recomputes all derived structures.
// Caller must hold the write lock.
func (ix *Index) rebuild(entries []Entry) {
	ix.entries = entries
	ix.norms = make([]float64, len(entries))
	ix.byChunk = make(map[string]int, len(entries))
	ix.byDoc = make(map[string][]int)
	for i, e := range entries {
		ix.norms[i] = norm(e.Vector)
		ix.byChunk[e.ChunkID] = i
		ix.byDoc[e.DocumentID] = append(ix.byDoc[e.DocumentID], i)
	}
}

func cosine(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

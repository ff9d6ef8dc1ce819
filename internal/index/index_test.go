package index

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kailas-cloud/docdex/internal/domain"
)

func mustIndex(t *testing.T, dim int) *Index {
	t.Helper()
	ix, err := New(dim)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ix
}

func mustInsert(t *testing.T, ix *Index, chunkID, docID string, ordinal int, vec []float32) {
	t.Helper()
	if err := ix.Insert(chunkID, docID, ordinal, vec); err != nil {
		t.Fatalf("Insert(%s): %v", chunkID, err)
	}
}

func TestNew_InvalidDimension(t *testing.T) {
	if _, err := New(0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestSearch_NearestNeighbor(t *testing.T) {
	ix := mustIndex(t, 3)
	mustInsert(t, ix, "c1", "doc1", 0, []float32{1, 0, 0})
	mustInsert(t, ix, "c2", "doc1", 1, []float32{0, 1, 0})

	hits, err := ix.Search([]float32{0.9, 0.1, 0}, 1, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].ChunkID != "c1" {
		t.Errorf("expected c1 as nearest neighbor, got %s", hits[0].ChunkID)
	}
}

func TestInsert_DimensionMismatch(t *testing.T) {
	ix := mustIndex(t, 3)
	mustInsert(t, ix, "c1", "doc1", 0, []float32{1, 0, 0})

	err := ix.Insert("c2", "doc1", 1, []float32{1, 0})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
	if ix.Len() != 1 {
		t.Errorf("failed insert must leave the index unchanged, len=%d", ix.Len())
	}
}

func TestInsert_DuplicateChunkID(t *testing.T) {
	ix := mustIndex(t, 2)
	mustInsert(t, ix, "c1", "doc1", 0, []float32{1, 0})

	if err := ix.Insert("c1", "doc1", 1, []float32{0, 1}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for duplicate chunk id, got %v", err)
	}
}

func TestSearch_ScopeIsolation(t *testing.T) {
	ix := mustIndex(t, 2)
	mustInsert(t, ix, "a0", "docA", 0, []float32{1, 0})
	mustInsert(t, ix, "a1", "docA", 1, []float32{0.9, 0.1})
	mustInsert(t, ix, "b0", "docB", 0, []float32{1, 0})

	hits, err := ix.Search([]float32{1, 0}, 10, "docA")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits in docA scope, got %d", len(hits))
	}
	for _, h := range hits {
		if h.DocumentID != "docA" {
			t.Errorf("scoped search leaked chunk %s of %s", h.ChunkID, h.DocumentID)
		}
	}
}

func TestSearch_TieBreaking(t *testing.T) {
	ix := mustIndex(t, 2)
	// All identical vectors: scores tie exactly.
	mustInsert(t, ix, "z9", "doc1", 2, []float32{1, 0})
	mustInsert(t, ix, "m5", "doc1", 0, []float32{1, 0})
	mustInsert(t, ix, "a1", "doc1", 2, []float32{1, 0})

	hits, err := ix.Search([]float32{1, 0}, 3, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	got := []string{hits[0].ChunkID, hits[1].ChunkID, hits[2].ChunkID}
	want := []string{"m5", "a1", "z9"} // ordinal 0, then ordinal 2 by chunk id
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie order: got %v, want %v", got, want)
		}
	}
}

func TestSearch_QueryErrors(t *testing.T) {
	ix := mustIndex(t, 2)
	mustInsert(t, ix, "c1", "doc1", 0, []float32{1, 0})

	if _, err := ix.Search([]float32{1, 0, 0}, 1, ""); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("wrong query dimension: expected ErrVectorDimMismatch, got %v", err)
	}
	if _, err := ix.Search([]float32{1, 0}, 0, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("non-positive top_k: expected ErrValidation, got %v", err)
	}
}

func TestRemove_AllOrNothing(t *testing.T) {
	ix := mustIndex(t, 2)
	mustInsert(t, ix, "a0", "docA", 0, []float32{1, 0})
	mustInsert(t, ix, "a1", "docA", 1, []float32{0, 1})
	mustInsert(t, ix, "b0", "docB", 0, []float32{1, 1})

	if n := ix.Remove("docA"); n != 2 {
		t.Fatalf("Remove docA: removed %d, want 2", n)
	}
	if n := ix.Remove("docA"); n != 0 {
		t.Errorf("second Remove must be a no-op, removed %d", n)
	}
	hits, err := ix.Search([]float32{1, 0}, 10, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].DocumentID != "docB" {
		t.Errorf("expected only docB to survive, got %+v", hits)
	}
}

// Searches racing a Remove must see either all of a document's chunks or none.
func TestRemove_ConcurrentSearches(t *testing.T) {
	ix := mustIndex(t, 2)
	const perDoc = 16
	for i := 0; i < perDoc; i++ {
		mustInsert(t, ix, fmt.Sprintf("a%02d", i), "docA", i, []float32{1, 0})
		mustInsert(t, ix, fmt.Sprintf("b%02d", i), "docB", i, []float32{1, 0})
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				hits, err := ix.Search([]float32{1, 0}, 2*perDoc, "")
				if err != nil {
					t.Errorf("Search: %v", err)
					return
				}
				var a int
				for _, h := range hits {
					if h.DocumentID == "docA" {
						a++
					}
				}
				if a != 0 && a != perDoc {
					t.Errorf("observed partial removal: %d of %d docA chunks", a, perDoc)
					return
				}
			}
		}()
	}
	ix.Remove("docA")
	wg.Wait()
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ix := mustIndex(t, 3)
	mustInsert(t, ix, "c0", "doc1", 0, []float32{0.3, 0.4, 0.5})
	mustInsert(t, ix, "c1", "doc1", 1, []float32{0.1, 0.9, 0.2})
	mustInsert(t, ix, "c2", "doc2", 0, []float32{0.8, 0.1, 0.1})

	path := filepath.Join(t.TempDir(), "index.snap")
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := mustIndex(t, 3)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	queries := [][]float32{{1, 0, 0}, {0.2, 0.7, 0.1}, {0.5, 0.5, 0.5}}
	for _, q := range queries {
		want, err := ix.Search(q, 3, "")
		if err != nil {
			t.Fatalf("Search original: %v", err)
		}
		got, err := loaded.Search(q, 3, "")
		if err != nil {
			t.Fatalf("Search loaded: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("result count: %d vs %d", len(got), len(want))
		}
		for i := range want {
			if got[i].ChunkID != want[i].ChunkID {
				t.Errorf("query %v rank %d: %s vs %s", q, i, got[i].ChunkID, want[i].ChunkID)
			}
			if math.Abs(got[i].Score-want[i].Score) > 1e-6 {
				t.Errorf("query %v rank %d: score %v vs %v", q, i, got[i].Score, want[i].Score)
			}
		}
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	ix := mustIndex(t, 3)
	mustInsert(t, ix, "c0", "doc1", 0, []float32{1, 0, 0})

	path := filepath.Join(t.TempDir(), "index.snap")
	writeJunk(t, path)

	if err := ix.Load(path); !errors.Is(err, domain.ErrIndexCorrupt) {
		t.Fatalf("expected ErrIndexCorrupt, got %v", err)
	}
	if ix.Len() != 1 {
		t.Errorf("failed load must leave contents untouched, len=%d", ix.Len())
	}
}

func writeJunk(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("definitely not a gob snapshot"), 0o600); err != nil {
		t.Fatalf("write junk: %v", err)
	}
}

func TestLoad_DimensionMismatch(t *testing.T) {
	src := mustIndex(t, 3)
	mustInsert(t, src, "c0", "doc1", 0, []float32{1, 0, 0})

	path := filepath.Join(t.TempDir(), "index.snap")
	if err := src.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := mustIndex(t, 4)
	if err := dst.Load(path); !errors.Is(err, domain.ErrIndexCorrupt) {
		t.Errorf("expected ErrIndexCorrupt on dimension mismatch, got %v", err)
	}
}

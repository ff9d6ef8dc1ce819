package document

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.New(3)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	doc := domain.Document{
		ID:       "doc-1",
		FullText: "some text",
		Chunks: []domain.Chunk{{
			ID:         "doc-1:0",
			DocumentID: "doc-1",
			Ordinal:    0,
			Text:       "some text",
			EndOffset:  9,
			Embedding:  []float32{1, 0, 0},
		}},
		CreatedAt: time.Now(),
	}
	if err := st.AddDocument(doc); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	return st
}

func TestGetAndRemove(t *testing.T) {
	svc := New(seededStore(t), "", zap.NewNop())

	doc, err := svc.Get("doc-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc.ID != "doc-1" {
		t.Errorf("Get() id = %q", doc.ID)
	}

	if _, err := svc.Get(""); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("Get(\"\") error = %v, want ErrDocumentNotFound", err)
	}

	svc.Remove("doc-1")
	if _, err := svc.Get("doc-1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("Get() after Remove error = %v, want ErrDocumentNotFound", err)
	}

	// Idempotent.
	svc.Remove("doc-1")
}

func TestSaveAndLoadState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.snapshot")
	svc := New(seededStore(t), path, zap.NewNop())

	if err := svc.SaveState(); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	fresh, err := store.New(3)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	restored := New(fresh, path, zap.NewNop())
	if err := restored.LoadState(); err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if _, err := restored.Get("doc-1"); err != nil {
		t.Errorf("Get() after load error = %v", err)
	}
}

func TestState_PathNotConfigured(t *testing.T) {
	svc := New(seededStore(t), "", zap.NewNop())

	if err := svc.SaveState(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("SaveState() error = %v, want ErrValidation", err)
	}
	if err := svc.LoadState(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("LoadState() error = %v, want ErrValidation", err)
	}
}

func TestLoadState_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.snapshot")
	svc := New(seededStore(t), path, zap.NewNop())

	if err := svc.LoadState(); err == nil {
		t.Error("LoadState() on a missing file returned nil error")
	}
	if _, err := svc.Get("doc-1"); err != nil {
		t.Errorf("existing state disturbed by failed load: %v", err)
	}
}

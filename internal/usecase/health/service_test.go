package health

import (
	"context"
	"errors"
	"testing"
)

type stubCounter struct {
	docs, chunks int
}

func (s stubCounter) Counts() (int, int) { return s.docs, s.chunks }

type stubChecker struct {
	err error
}

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestCheck_NoChecker(t *testing.T) {
	svc := New(stubCounter{docs: 2, chunks: 17}, nil)

	got := svc.Check(context.Background())
	if got.Status != "ok" || got.Documents != 2 || got.Chunks != 17 {
		t.Errorf("Check() = %+v", got)
	}
	if got.Embedder != "" {
		t.Errorf("Embedder = %q, want empty without a checker", got.Embedder)
	}
}

func TestCheck_HealthyProvider(t *testing.T) {
	svc := New(stubCounter{}, stubChecker{})

	got := svc.Check(context.Background())
	if got.Status != "ok" || got.Embedder != "ok" {
		t.Errorf("Check() = %+v", got)
	}
}

func TestCheck_DegradedProvider(t *testing.T) {
	svc := New(stubCounter{docs: 1}, stubChecker{err: errors.New("provider unreachable")})

	got := svc.Check(context.Background())
	if got.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", got.Status)
	}
	if got.Embedder != "provider unreachable" {
		t.Errorf("Embedder = %q", got.Embedder)
	}
	if got.Documents != 1 {
		t.Errorf("Documents = %d, want 1", got.Documents)
	}
}

package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
)

type countingEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (m *countingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 7}, nil
}

func TestCached_HitSkipsInner(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1, 2, 3}}
	c := NewCached(inner, 10)

	first, err := c.Embed(context.Background(), "same text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	second, err := c.Embed(context.Background(), "same text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("cache hit must report zero tokens, got %d", second.TotalTokens)
	}
	for i := range first.Embedding {
		if first.Embedding[i] != second.Embedding[i] {
			t.Fatalf("cached vector differs at %d", i)
		}
	}
}

func TestCached_DistinctTexts(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	c := NewCached(inner, 10)

	_, _ = c.Embed(context.Background(), "one")
	_, _ = c.Embed(context.Background(), "two")

	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", inner.calls)
	}
}

func TestCached_Eviction(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	c := NewCached(inner, 1)

	_, _ = c.Embed(context.Background(), "one")
	_, _ = c.Embed(context.Background(), "two") // evicts "one"
	_, _ = c.Embed(context.Background(), "one")

	if inner.calls != 3 {
		t.Errorf("expected 3 inner calls after eviction, got %d", inner.calls)
	}
}

func TestCached_ErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("boom")}
	c := NewCached(inner, 10)

	if _, err := c.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error")
	}
	inner.err = nil
	inner.vec = []float32{1}
	if _, err := c.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", inner.calls)
	}
}

func TestInstrumented_PassThrough(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1, 2}}
	emb := NewInstrumented(inner, "test", "test-model", zap.NewNop())

	res, err := emb.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(res.Embedding) != 2 {
		t.Errorf("expected 2 dimensions, got %d", len(res.Embedding))
	}

	batch, err := emb.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if len(batch.Embeddings) != 2 {
		t.Errorf("expected 2 embeddings via fallback, got %d", len(batch.Embeddings))
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 inner calls, got %d", inner.calls)
	}
}

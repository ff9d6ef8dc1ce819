package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/docdex/internal/domain"
)

type stubDocs struct {
	known map[string]bool
}

func (s *stubDocs) GetDocument(id string) (domain.Document, error) {
	if !s.known[id] {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return domain.Document{ID: id}, nil
}

type stubSearch struct {
	results  []domain.ScoredChunk
	err      error
	gotTopK  int
	gotScope string
}

func (s *stubSearch) Search(_ []float32, topK int, scope string) ([]domain.ScoredChunk, error) {
	s.gotTopK = topK
	s.gotScope = scope
	return s.results, s.err
}

type stubEmbed struct {
	err error
}

func (s *stubEmbed) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}, nil
}

func scored(id, text string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{ID: id, DocumentID: "doc-1", Text: text},
		Score: score,
	}
}

func newService(results []domain.ScoredChunk, cfg Config) (*Service, *stubSearch) {
	search := &stubSearch{results: results}
	docs := &stubDocs{known: map[string]bool{"doc-1": true}}
	return New(docs, search, &stubEmbed{}, cfg), search
}

func TestAnswer_ConcatenatesByScore(t *testing.T) {
	svc, search := newService([]domain.ScoredChunk{
		scored("doc-1:0", "first chunk", 0.92),
		scored("doc-1:3", "second chunk", 0.71),
		scored("doc-1:1", "third chunk", 0.44),
	}, Config{})

	got, err := svc.Answer(context.Background(), "what?", "doc-1")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Text != "first chunk second chunk third chunk" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92", got.Confidence)
	}
	wantSources := []string{"doc-1:0", "doc-1:3", "doc-1:1"}
	if len(got.Sources) != len(wantSources) {
		t.Fatalf("Sources = %v, want %v", got.Sources, wantSources)
	}
	for i, s := range wantSources {
		if got.Sources[i] != s {
			t.Errorf("Sources[%d] = %q, want %q", i, got.Sources[i], s)
		}
	}
	if search.gotScope != "doc-1" {
		t.Errorf("search scope = %q, want doc-1", search.gotScope)
	}
	if search.gotTopK != defaultTopK {
		t.Errorf("search topK = %d, want %d", search.gotTopK, defaultTopK)
	}
}

func TestAnswer_NoChunkClearsThreshold(t *testing.T) {
	svc, _ := newService([]domain.ScoredChunk{
		scored("doc-1:0", "faint match", 0.12),
		scored("doc-1:1", "fainter", 0.05),
	}, Config{})

	got, err := svc.Answer(context.Background(), "unrelated question", "doc-1")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Text != domain.NoAnswerText {
		t.Errorf("Text = %q, want canonical no-answer text", got.Text)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
	if len(got.Sources) != 0 {
		t.Errorf("Sources = %v, want empty", got.Sources)
	}
}

func TestAnswer_NegativeMinScoreDisablesThreshold(t *testing.T) {
	svc, _ := newService([]domain.ScoredChunk{
		scored("doc-1:0", "faint match", 0.12),
		scored("doc-1:1", "fainter", 0.05),
	}, Config{MinScore: -1})

	got, err := svc.Answer(context.Background(), "unrelated question", "doc-1")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Text != "faint match fainter" {
		t.Errorf("Text = %q, want both low-score chunks", got.Text)
	}
	if len(got.Sources) != 2 {
		t.Errorf("Sources = %v, want two entries", got.Sources)
	}
}

func TestAnswer_BlankQuestion(t *testing.T) {
	svc, _ := newService(nil, Config{})

	_, err := svc.Answer(context.Background(), "   ", "doc-1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestAnswer_UnknownDocument(t *testing.T) {
	svc, _ := newService(nil, Config{})

	for _, id := range []string{"", "missing"} {
		_, err := svc.Answer(context.Background(), "question", id)
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			t.Errorf("Answer(%q) error = %v, want ErrDocumentNotFound", id, err)
		}
	}
}

func TestAnswer_EmbedFailurePropagates(t *testing.T) {
	search := &stubSearch{}
	docs := &stubDocs{known: map[string]bool{"doc-1": true}}
	svc := New(docs, search, &stubEmbed{err: domain.ErrEmbeddingProviderError}, Config{})

	_, err := svc.Answer(context.Background(), "question", "doc-1")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("error = %v, want ErrEmbeddingProviderError", err)
	}
}

func TestAnswer_LengthCap(t *testing.T) {
	long := strings.Repeat("x", 40)
	svc, _ := newService([]domain.ScoredChunk{
		scored("doc-1:0", long, 0.9),
		scored("doc-1:1", long, 0.8),
		scored("doc-1:2", long, 0.7),
	}, Config{MaxAnswerChars: 90})

	got, err := svc.Answer(context.Background(), "question", "doc-1")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	// Two 40-rune chunks plus a separator fit; the third would overflow.
	if want := long + " " + long; got.Text != want {
		t.Errorf("Text length = %d, want %d", len([]rune(got.Text)), len([]rune(want)))
	}
	if len(got.Sources) != 2 {
		t.Errorf("Sources = %v, want two entries", got.Sources)
	}
}

func TestAnswer_TopChunkTruncatedRuneSafe(t *testing.T) {
	svc, _ := newService([]domain.ScoredChunk{
		scored("doc-1:0", strings.Repeat("щ", 30), 0.95),
	}, Config{MaxAnswerChars: 10})

	got, err := svc.Answer(context.Background(), "question", "doc-1")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if want := strings.Repeat("щ", 10); got.Text != want {
		t.Errorf("Text = %q, want %q", got.Text, want)
	}
	if len(got.Sources) != 1 {
		t.Errorf("Sources = %v, want the top chunk only", got.Sources)
	}
}

func TestAnswer_ConfidenceClamped(t *testing.T) {
	svc, _ := newService([]domain.ScoredChunk{
		scored("doc-1:0", "exact duplicate text", 1.0000002),
	}, Config{})

	got, err := svc.Answer(context.Background(), "question", "doc-1")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Confidence != 1 {
		t.Errorf("Confidence = %v, want clamped to 1", got.Confidence)
	}
}

func TestAnswer_Deterministic(t *testing.T) {
	svc, _ := newService([]domain.ScoredChunk{
		scored("doc-1:0", "alpha", 0.9),
		scored("doc-1:1", "beta", 0.6),
	}, Config{})

	first, err := svc.Answer(context.Background(), "question", "doc-1")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	second, err := svc.Answer(context.Background(), "question", "doc-1")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if first.Text != second.Text || first.Confidence != second.Confidence {
		t.Errorf("repeated answers differ: %+v vs %+v", first, second)
	}
}

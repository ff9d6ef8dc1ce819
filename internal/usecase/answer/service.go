// Package answer implements retrieval-grounded question answering: embed the
// question, retrieve the closest chunks of one document, and assemble an
// extractive answer with a similarity-derived confidence.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/logger"
)

// Config holds retrieval and assembly parameters.
type Config struct {
	TopK int // chunks retrieved per question
	// MinScore is the similarity threshold below which nothing qualifies.
	// Zero selects the default; a negative value disables the threshold
	// so every retrieved chunk qualifies.
	MinScore       float64
	MaxAnswerChars int // answer length cap in runes
}

const (
	defaultTopK           = 5
	defaultMinScore       = 0.3
	defaultMaxAnswerChars = 1500
)

// Service answers questions against committed documents.
type Service struct {
	docs   DocumentReader
	search Searcher
	embed  Embedder
	cfg    Config
}

// New creates an answer service, filling zero config fields with defaults.
func New(docs DocumentReader, search Searcher, embed Embedder, cfg Config) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = defaultMinScore
	}
	if cfg.MaxAnswerChars <= 0 {
		cfg.MaxAnswerChars = defaultMaxAnswerChars
	}
	return &Service{docs: docs, search: search, embed: embed, cfg: cfg}
}

// Answer retrieves the chunks of documentID closest to the question and
// concatenates the qualifying ones in descending-score order. When no chunk
// clears MinScore the canonical not-found answer is returned with zero
// confidence. Deterministic for a fixed index state and question.
func (s *Service) Answer(ctx context.Context, question, documentID string) (domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Answer{}, fmt.Errorf("%w: question is empty", domain.ErrValidation)
	}
	if documentID == "" {
		return domain.Answer{}, fmt.Errorf("%w: no document selected", domain.ErrDocumentNotFound)
	}
	if _, err := s.docs.GetDocument(documentID); err != nil {
		return domain.Answer{}, fmt.Errorf("get document: %w", err)
	}

	embResult, err := s.embed.Embed(ctx, question)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("vectorize question: %w", err)
	}

	results, err := s.search.Search(embResult.Embedding, s.cfg.TopK, documentID)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("search chunks: %w", err)
	}

	qualifying := results[:0:0]
	for _, r := range results {
		if r.Score >= s.cfg.MinScore {
			qualifying = append(qualifying, r)
		}
	}
	if len(qualifying) == 0 {
		// "Nothing relevant" is a valid outcome, not a fault.
		logger.FromContext(ctx).Debug("no chunk cleared the similarity threshold",
			zap.String("document_id", documentID),
			zap.Int("retrieved", len(results)),
			zap.Float64("min_score", s.cfg.MinScore),
		)
		return domain.Answer{Text: domain.NoAnswerText, Confidence: 0}, nil
	}

	text, sources := s.assemble(qualifying)
	return domain.Answer{
		Text:       text,
		Confidence: clamp01(qualifying[0].Score),
		Sources:    sources,
	}, nil
}

// assemble concatenates chunk texts in descending-score order up to the
// configured length cap. The top chunk is always included, truncated if it
// alone exceeds the cap.
func (s *Service) assemble(results []domain.ScoredChunk) (string, []string) {
	var b strings.Builder
	var sources []string
	length := 0
	for i, r := range results {
		runes := []rune(r.Chunk.Text)
		if i > 0 {
			if length+1+len(runes) > s.cfg.MaxAnswerChars {
				break
			}
			b.WriteString(" ")
			length++
		} else if len(runes) > s.cfg.MaxAnswerChars {
			runes = runes[:s.cfg.MaxAnswerChars]
		}
		b.WriteString(string(runes))
		length += len(runes)
		sources = append(sources, r.Chunk.ID)
	}
	return b.String(), sources
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

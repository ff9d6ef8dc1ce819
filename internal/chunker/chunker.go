// Package chunker segments document text into retrievable spans.
package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Method selects the segmentation strategy.
type Method string

const (
	// Fixed uses a sliding character window with a constant step.
	Fixed Method = "fixed"
	// Semantic accumulates sentences up to the size limit and overlaps
	// trailing sentences between neighboring chunks.
	Semantic Method = "semantic"
)

// Config holds segmentation parameters. Sizes and offsets are in runes.
type Config struct {
	MaxChunkSize int
	Overlap      int
	Method       Method
}

// Span is one emitted chunk of text with its rune offsets in the source.
type Span struct {
	Text  string
	Start int
	End   int
}

// Chunker splits text into spans. Safe for concurrent use.
type Chunker struct {
	cfg Config
}

// New validates the config and creates a chunker.
func New(cfg Config) (*Chunker, error) {
	if cfg.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max_chunk_size must be positive, got %d", domain.ErrValidation, cfg.MaxChunkSize)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, max_chunk_size), got %d", domain.ErrValidation, cfg.Overlap)
	}
	switch cfg.Method {
	case Fixed, Semantic:
	default:
		return nil, fmt.Errorf("%w: unknown chunking method %q", domain.ErrValidation, cfg.Method)
	}
	return &Chunker{cfg: cfg}, nil
}

// Chunk segments text into ordered spans. Consecutive spans cover the whole
// input with no gaps; overlap between neighbors is bounded by cfg.Overlap.
// Empty or whitespace-only input yields nil. Deterministic for a given input.
func (c *Chunker) Chunk(text string) []Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)

	if c.cfg.Method == Fixed {
		return c.chunkFixed(runes)
	}
	return c.chunkSemantic(runes)
}

// chunkFixed slides a MaxChunkSize window with step MaxChunkSize-Overlap.
// The last window is clamped to the end of the text and may be shorter.
func (c *Chunker) chunkFixed(runes []rune) []Span {
	size := c.cfg.MaxChunkSize
	step := size - c.cfg.Overlap

	var spans []Span
	for start := 0; ; start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, Span{
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
		})
		if end == len(runes) {
			break
		}
	}
	return spans
}

// chunkSemantic groups whole sentences until adding the next one would exceed
// MaxChunkSize. Overlap repeats trailing sentences of the previous chunk as
// long as their combined length stays within cfg.Overlap runes. A single
// sentence longer than MaxChunkSize becomes its own oversized chunk.
func (c *Chunker) chunkSemantic(runes []rune) []Span {
	sentences := splitSentences(runes)

	var spans []Span
	start := 0 // index of the first sentence in the current chunk
	for start < len(sentences) {
		end := start + 1
		for end < len(sentences) && sentences[end].end-sentences[start].start <= c.cfg.MaxChunkSize {
			end++
		}
		spans = append(spans, Span{
			Text:  string(runes[sentences[start].start:sentences[end-1].end]),
			Start: sentences[start].start,
			End:   sentences[end-1].end,
		})
		if end == len(sentences) {
			break
		}
		start = c.overlapStart(sentences, start, end)
	}
	return spans
}

// overlapStart picks the first sentence of the next chunk: the earliest
// trailing sentence of [start, end) whose distance to the chunk end fits in
// Overlap. Always advances past the previous chunk's first sentence.
func (c *Chunker) overlapStart(sentences []sentence, start, end int) int {
	chunkEnd := sentences[end-1].end
	next := end
	for i := end - 1; i > start; i-- {
		if chunkEnd-sentences[i].start > c.cfg.Overlap {
			break
		}
		next = i
	}
	return next
}

type sentence struct {
	start, end int
}

// splitSentences cuts the rune sequence into contiguous sentence spans.
// A sentence runs through its terminator (. ! ?) and any following
// whitespace, so the spans cover [0, len(runes)) exactly. Text without a
// final terminator yields a trailing sentence.
func splitSentences(runes []rune) []sentence {
	var out []sentence
	start := 0
	i := 0
	for i < len(runes) {
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			i++
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			out = append(out, sentence{start: start, end: i})
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		out = append(out, sentence{start: start, end: len(runes)})
	}
	return out
}

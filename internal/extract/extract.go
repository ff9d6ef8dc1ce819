// Package extract converts raw input sources into plain UTF-8 text.
package extract

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Result holds extracted text and source metadata.
type Result struct {
	Text      string
	WordCount int
	Lines     int
}

// Extractor produces plain text from an input source. Empty output is a
// failure, not an empty document.
type Extractor interface {
	Extract(r io.Reader) (Result, error)
}

// Plain treats the source as UTF-8 text. It is the only built-in extractor;
// binary formats are handled by external collaborators.
type Plain struct {
	// MaxBytes limits how much input is read. Zero means 16 MiB.
	MaxBytes int64
}

const defaultMaxBytes = 16 << 20

// Extract reads the source and validates it as non-empty UTF-8 text.
func (p Plain) Extract(r io.Reader) (Result, error) {
	limit := p.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read source: %v", domain.ErrExtraction, err)
	}
	if int64(len(data)) > limit {
		return Result{}, fmt.Errorf("%w: source exceeds %d bytes", domain.ErrExtraction, limit)
	}
	if !utf8.Valid(data) {
		return Result{}, fmt.Errorf("%w: source is not valid UTF-8", domain.ErrExtraction)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("%w: source contains no text", domain.ErrExtraction)
	}

	return Result{
		Text:      text,
		WordCount: len(strings.Fields(text)),
		Lines:     strings.Count(text, "\n") + 1,
	}, nil
}

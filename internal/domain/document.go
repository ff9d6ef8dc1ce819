package domain

import (
	"fmt"
	"time"
)

// Chunk is a contiguous span of a document's text embedded as one vector.
// Offsets are rune offsets into the document's full text.
type Chunk struct {
	ID          string
	DocumentID  string
	Ordinal     int
	Text        string
	StartOffset int
	EndOffset   int
	Embedding   []float32
}

// Validate checks the chunk's structural invariants against the given dimension.
func (c *Chunk) Validate(dimension int) error {
	if c.ID == "" {
		return fmt.Errorf("%w: chunk id is empty", ErrValidation)
	}
	if c.Text == "" {
		return fmt.Errorf("%w: chunk %s has empty text", ErrValidation, c.ID)
	}
	if c.EndOffset <= c.StartOffset {
		return fmt.Errorf("%w: chunk %s has offsets [%d, %d)", ErrValidation, c.ID, c.StartOffset, c.EndOffset)
	}
	if len(c.Embedding) != dimension {
		return fmt.Errorf("%w: chunk %s has %d dimensions, index has %d",
			ErrVectorDimMismatch, c.ID, len(c.Embedding), dimension)
	}
	return nil
}

// Document is an indexed document with its ordered chunks.
type Document struct {
	ID        string
	FullText  string
	Chunks    []Chunk // ordered by Ordinal
	CreatedAt time.Time
}

// ScoredChunk is a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

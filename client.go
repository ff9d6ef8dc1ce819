// Package docdex embeds the document indexing and question answering engine
// in-process: chunking, embedding, vector retrieval, and extractive answers
// behind a single Client, no HTTP server required.
package docdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/chunker"
	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/store"
	"github.com/kailas-cloud/docdex/internal/summarizer"
	answeruc "github.com/kailas-cloud/docdex/internal/usecase/answer"
	documentuc "github.com/kailas-cloud/docdex/internal/usecase/document"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
	summaryuc "github.com/kailas-cloud/docdex/internal/usecase/summary"
)

// EmbeddingResult carries an embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text. Implementations wrap a real provider.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// State is the lifecycle phase of a submitted document.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Status is the observable processing state of a submitted document.
type Status struct {
	DocumentID string
	State      State
	Progress   int
	Error      string
}

// Answer is an extractive answer with retrieval confidence.
type Answer struct {
	Text       string
	Confidence float64
	Sources    []string
}

// Summary is a structured document summary.
type Summary struct {
	Overview    string
	KeyFindings []string
	Figures     []string
	Keywords    []string
}

const (
	defaultDimensions   = 1536
	defaultMaxChunkSize = 1000
	defaultOverlap      = 200
	defaultPollInterval = 50 * time.Millisecond
)

// Client is the docdex SDK entry point.
type Client struct {
	store     *store.Store
	ingest    *ingestuc.Service
	answer    *answeruc.Service
	summary   *summaryuc.Service
	documents *documentuc.Service
	snapshot  string
}

// New creates a docdex Client with an in-process index.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dimensions:   defaultDimensions,
		maxChunkSize: defaultMaxChunkSize,
		overlap:      defaultOverlap,
		method:       ChunkingSemantic,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	st, err := store.New(cfg.dimensions)
	if err != nil {
		return nil, fmt.Errorf("docdex: create store: %w", err)
	}

	ch, err := chunker.New(chunker.Config{
		MaxChunkSize: cfg.maxChunkSize,
		Overlap:      cfg.overlap,
		Method:       chunker.Method(cfg.method),
	})
	if err != nil {
		return nil, fmt.Errorf("docdex: create chunker: %w", err)
	}

	var emb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	}

	c := &Client{
		store:    st,
		snapshot: cfg.snapshotPath,
	}
	c.ingest = ingestuc.New(st, ch, emb, ingestuc.Config{
		Workers:          cfg.workers,
		EmbedConcurrency: cfg.concurrency,
		Timeout:          cfg.timeout,
	}, cfg.logger)
	c.answer = answeruc.New(st, st, emb, answeruc.Config{
		TopK:           cfg.topK,
		MinScore:       cfg.minScore,
		MaxAnswerChars: cfg.maxAnswer,
	})
	c.summary = summaryuc.New(st, summarizer.NewFrequency())
	c.documents = documentuc.New(st, cfg.snapshotPath, cfg.logger)

	return c, nil
}

// AddDocument queues text for background indexing and returns the document
// id. An empty documentID gets a generated one. Poll Status or call
// WaitForDocument to observe completion.
func (c *Client) AddDocument(documentID, text string) (string, error) {
	id, err := c.ingest.Submit(documentID, text)
	if err != nil {
		return "", fmt.Errorf("docdex: add document: %w", err)
	}
	return id, nil
}

// Status returns the processing status of a submitted document.
func (c *Client) Status(documentID string) (Status, error) {
	st, err := c.ingest.GetStatus(documentID)
	if err != nil {
		return Status{}, fmt.Errorf("docdex: status: %w", err)
	}
	return statusFromDomain(st), nil
}

// WaitForDocument polls until the document reaches a terminal state or ctx
// expires.
func (c *Client) WaitForDocument(ctx context.Context, documentID string) (Status, error) {
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		st, err := c.Status(documentID)
		if err != nil {
			return Status{}, err
		}
		if st.State == StateCompleted || st.State == StateFailed {
			return st, nil
		}

		select {
		case <-ctx.Done():
			return Status{}, fmt.Errorf("docdex: wait for %q: %w", documentID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Ask answers a question against one indexed document.
func (c *Client) Ask(ctx context.Context, documentID, question string) (Answer, error) {
	a, err := c.answer.Answer(ctx, question, documentID)
	if err != nil {
		return Answer{}, fmt.Errorf("docdex: ask: %w", err)
	}
	return Answer{Text: a.Text, Confidence: a.Confidence, Sources: a.Sources}, nil
}

// Summarize produces a structured summary of one indexed document.
func (c *Client) Summarize(ctx context.Context, documentID string) (Summary, error) {
	s, err := c.summary.GetSummary(ctx, documentID)
	if err != nil {
		return Summary{}, fmt.Errorf("docdex: summarize: %w", err)
	}
	return Summary{
		Overview:    s.Overview,
		KeyFindings: s.KeyFindings,
		Figures:     s.Figures,
		Keywords:    s.Keywords,
	}, nil
}

// RemoveDocument deletes a document and its index entries. Removing an
// absent document is a no-op.
func (c *Client) RemoveDocument(documentID string) {
	c.documents.Remove(documentID)
}

// SaveState writes the full index state to the configured snapshot path.
func (c *Client) SaveState() error {
	return c.documents.SaveState()
}

// LoadState replaces the index state from the configured snapshot path.
func (c *Client) LoadState() error {
	return c.documents.LoadState()
}

// Close drains in-flight processing and, when a snapshot path is configured,
// persists the final state.
func (c *Client) Close(ctx context.Context) error {
	if err := c.ingest.Shutdown(ctx); err != nil {
		return fmt.Errorf("docdex: close: %w", err)
	}
	if c.snapshot != "" {
		if err := c.documents.SaveState(); err != nil {
			return fmt.Errorf("docdex: close: %w", err)
		}
	}
	return nil
}

func statusFromDomain(st domain.ProcessingStatus) Status {
	return Status{
		DocumentID: st.DocumentID,
		State:      State(st.State),
		Progress:   st.Progress,
		Error:      st.Error,
	}
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"docdex: embedder not configured (use WithEmbedder)",
	)
}

// Package ingest coordinates the document processing pipeline: chunk,
// embed, commit. Submissions return immediately; a bounded pool of worker
// slots runs the pipeline in the background while callers poll the status.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/metrics"
)

// Config holds pipeline parameters.
type Config struct {
	Workers          int           // documents processed concurrently
	EmbedConcurrency int           // parallel embedding calls per document
	Timeout          time.Duration // per-document processing deadline
}

const (
	defaultWorkers          = 4
	defaultEmbedConcurrency = 4
	defaultTimeout          = 5 * time.Minute
)

// Service runs document ingestion in the background and tracks per-document
// processing status.
type Service struct {
	store DocumentStore
	chunk Chunker
	embed Embedder
	cfg   Config
	log   *zap.Logger

	slots chan struct{}
	wg    sync.WaitGroup

	mu       sync.RWMutex
	statuses map[string]domain.ProcessingStatus
	closed   bool
}

// New creates an ingest service, filling zero config fields with defaults.
func New(store DocumentStore, chunk Chunker, embed Embedder, cfg Config, log *zap.Logger) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = defaultEmbedConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Service{
		store:    store,
		chunk:    chunk,
		embed:    embed,
		cfg:      cfg,
		log:      log,
		slots:    make(chan struct{}, cfg.Workers),
		statuses: make(map[string]domain.ProcessingStatus),
	}
}

// Submit queues a document for processing and returns its id without waiting
// for the pipeline. An empty documentID gets a generated one. A document that
// is queued, processing, or already committed is rejected; a failed one may
// be resubmitted.
func (s *Service) Submit(documentID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: document text is empty", domain.ErrValidation)
	}
	if documentID == "" {
		documentID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", fmt.Errorf("%w: service is shutting down", domain.ErrValidation)
	}
	if st, ok := s.statuses[documentID]; ok && st.State != domain.StateFailed {
		return "", fmt.Errorf("%w: document %q is %s", domain.ErrDuplicateDocument, documentID, st.State)
	}
	if _, err := s.store.GetDocument(documentID); err == nil {
		return "", fmt.Errorf("%w: document %q already committed", domain.ErrDuplicateDocument, documentID)
	}

	s.statuses[documentID] = domain.ProcessingStatus{
		DocumentID: documentID,
		State:      domain.StateQueued,
	}
	s.wg.Add(1)
	go s.run(documentID, text)

	return documentID, nil
}

// GetStatus returns the processing status of a submitted document.
func (s *Service) GetStatus(documentID string) (domain.ProcessingStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.statuses[documentID]
	if !ok {
		return domain.ProcessingStatus{}, fmt.Errorf("%w: no processing record for %q", domain.ErrDocumentNotFound, documentID)
	}
	return st, nil
}

// ClearStatus removes the processing record of a terminal document. A record
// still in flight cannot be cleared.
func (s *Service) ClearStatus(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.statuses[documentID]
	if !ok {
		return fmt.Errorf("%w: no processing record for %q", domain.ErrDocumentNotFound, documentID)
	}
	if !st.State.Terminal() {
		return fmt.Errorf("%w: document %q is still %s", domain.ErrValidation, documentID, st.State)
	}
	delete(s.statuses, documentID)
	return nil
}

// Shutdown stops accepting submissions and waits for in-flight documents to
// finish or ctx to expire.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ingest shutdown: %w", ctx.Err())
	}
}

func (s *Service) run(documentID, text string) {
	defer s.wg.Done()

	s.slots <- struct{}{}
	defer func() { <-s.slots }()

	start := time.Now()
	s.transition(documentID, domain.StateProcessing, "")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	err := s.process(ctx, documentID, text)
	elapsed := time.Since(start)
	metrics.ProcessingDuration.Observe(elapsed.Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: exceeded %s", domain.ErrProcessingTimeout, s.cfg.Timeout)
		}
		s.transition(documentID, domain.StateFailed, err.Error())
		metrics.DocumentsProcessedTotal.WithLabelValues("failed").Inc()
		s.log.Warn("document processing failed",
			zap.String("document_id", documentID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}

	s.setProgress(documentID, 100)
	s.transition(documentID, domain.StateCompleted, "")
	metrics.DocumentsProcessedTotal.WithLabelValues("completed").Inc()
	s.log.Info("document processed",
		zap.String("document_id", documentID),
		zap.Duration("elapsed", elapsed),
	)
}

// process runs the pipeline. The store commit is the only mutation; anything
// failing before it leaves the store untouched.
func (s *Service) process(ctx context.Context, documentID, text string) error {
	spans := s.chunk.Chunk(text)
	if len(spans) == 0 {
		return fmt.Errorf("%w: text produced no chunks", domain.ErrValidation)
	}
	s.setProgress(documentID, 10)

	vectors := make([][]float32, len(spans))
	var embedded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EmbedConcurrency)
	for i, sp := range spans {
		g.Go(func() error {
			res, err := s.embed.Embed(gctx, sp.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i, err)
			}
			vectors[i] = res.Embedding
			done := embedded.Add(1)
			s.setProgress(documentID, 10+int(80*done/int64(len(spans))))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := domain.Document{ID: documentID, FullText: text}
	doc.Chunks = make([]domain.Chunk, len(spans))
	for i, sp := range spans {
		doc.Chunks[i] = domain.Chunk{
			ID:          fmt.Sprintf("%s:%d", documentID, i),
			DocumentID:  documentID,
			Ordinal:     i,
			Text:        sp.Text,
			StartOffset: sp.Start,
			EndOffset:   sp.End,
			Embedding:   vectors[i],
		}
	}

	if err := s.store.AddDocument(doc); err != nil {
		return fmt.Errorf("commit document: %w", err)
	}
	metrics.ChunksIndexedTotal.Add(float64(len(doc.Chunks)))
	return nil
}

func (s *Service) transition(documentID string, next domain.State, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.statuses[documentID]
	if !ok || !st.State.CanTransition(next) {
		return
	}
	st.State = next
	st.Error = errMsg
	s.statuses[documentID] = st
}

// setProgress raises the progress value. It never lowers it, so concurrent
// embedding updates arriving out of order keep the reported value monotonic.
func (s *Service) setProgress(documentID string, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.statuses[documentID]
	if !ok || st.State.Terminal() || progress <= st.Progress {
		return
	}
	st.Progress = progress
	s.statuses[documentID] = st
}

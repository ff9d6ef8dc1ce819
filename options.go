package docdex

import (
	"time"

	"go.uber.org/zap"
)

// ChunkingMethod selects how document text is segmented.
type ChunkingMethod string

const (
	// ChunkingFixed slides a fixed character window over the text.
	ChunkingFixed ChunkingMethod = "fixed"
	// ChunkingSemantic accumulates whole sentences up to the size limit.
	ChunkingSemantic ChunkingMethod = "semantic"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	embedder     Embedder
	dimensions   int
	maxChunkSize int
	overlap      int
	method       ChunkingMethod
	topK         int
	minScore     float64
	maxAnswer    int
	workers      int
	concurrency  int
	timeout      time.Duration
	snapshotPath string
	logger       *zap.Logger
}

// WithEmbedder sets the embedding provider. Required for indexing and
// question answering.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithDimensions sets the embedding vector dimensionality.
func WithDimensions(n int) Option {
	return func(c *clientConfig) { c.dimensions = n }
}

// WithChunking sets the segmentation method and window parameters.
func WithChunking(method ChunkingMethod, maxChunkSize, overlap int) Option {
	return func(c *clientConfig) {
		c.method = method
		c.maxChunkSize = maxChunkSize
		c.overlap = overlap
	}
}

// WithRetrieval sets the retrieval depth and similarity threshold for
// question answering. A negative minScore disables the threshold so every
// retrieved chunk qualifies.
func WithRetrieval(topK int, minScore float64) Option {
	return func(c *clientConfig) {
		c.topK = topK
		c.minScore = minScore
	}
}

// WithMaxAnswerChars caps the assembled answer length in runes.
func WithMaxAnswerChars(n int) Option {
	return func(c *clientConfig) { c.maxAnswer = n }
}

// WithWorkers sets how many documents are processed concurrently and how
// many embedding calls run in parallel per document.
func WithWorkers(workers, embedConcurrency int) Option {
	return func(c *clientConfig) {
		c.workers = workers
		c.concurrency = embedConcurrency
	}
}

// WithProcessingTimeout sets the per-document processing deadline.
func WithProcessingTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithSnapshotPath enables state persistence at the given file path.
func WithSnapshotPath(path string) Option {
	return func(c *clientConfig) { c.snapshotPath = path }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

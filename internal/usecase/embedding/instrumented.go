// Package embedding provides decorators around the domain Embedder:
// Prometheus instrumentation and an in-process cache.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/metrics"
)

// InstrumentedEmbedder wraps Embedder with metrics and logging.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumented wraps an embedder with observability.
func NewInstrumented(inner domain.Embedder, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and records request metrics.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(p.provider, p.model, "api_error").Inc()
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(p.provider, p.model).Observe(duration.Seconds())
	if result.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(p.provider, p.model, "prompt").Add(float64(result.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(p.provider, p.model, "total").Add(float64(result.TotalTokens))
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed delegates to the inner BatchEmbedder if available, otherwise
// falls back to per-item Embed calls.
func (p *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := p.inner.(domain.BatchEmbedder)
	if !ok {
		res, err := domain.BatchFallback(ctx, p, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed fallback: %w", err)
		}
		return res, nil
	}

	start := time.Now()

	result, err := be.BatchEmbed(ctx, texts)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(p.provider, p.model, "api_error").Inc()
		p.logger.Error("Batch embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Int("batch_size", len(texts)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(p.provider, p.model).Observe(duration.Seconds())
	if result.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(p.provider, p.model, "prompt").Add(float64(result.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(p.provider, p.model, "total").Add(float64(result.TotalTokens))
	}
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

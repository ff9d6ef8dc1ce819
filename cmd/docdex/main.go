package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/chunker"
	"github.com/kailas-cloud/docdex/internal/config"
	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/extract"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
	"github.com/kailas-cloud/docdex/internal/metrics"
	"github.com/kailas-cloud/docdex/internal/store"
	"github.com/kailas-cloud/docdex/internal/summarizer"
	chiTransport "github.com/kailas-cloud/docdex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/docdex/internal/transport/openai"
	answeruc "github.com/kailas-cloud/docdex/internal/usecase/answer"
	documentuc "github.com/kailas-cloud/docdex/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/docdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
	summaryuc "github.com/kailas-cloud/docdex/internal/usecase/summary"
	"github.com/kailas-cloud/docdex/internal/version"
)

func main() {
	// .env is optional; the config file and real env vars win
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Register Prometheus metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIngestMetrics()

	st, err := store.New(cfg.Embedding.Dimensions)
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}

	// Restore previous state at boot when a snapshot exists
	if path := cfg.Storage.SnapshotPath; path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := st.LoadAll(path); err != nil {
				logger.Fatal("Failed to load snapshot", zap.String("path", path), zap.Error(err))
			}
			docs, chunks := st.Counts()
			logger.Info("Snapshot loaded",
				zap.String("path", path),
				zap.Int("documents", docs),
				zap.Int("chunks", chunks),
			)
		}
	}

	embedder := buildEmbedder(cfg.Embedding, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("cache_size", cfg.Embedding.CacheSize),
	)

	ch, err := chunker.New(chunker.Config{
		MaxChunkSize: cfg.Chunking.MaxChunkSize,
		Overlap:      cfg.Chunking.Overlap,
		Method:       chunker.Method(cfg.Chunking.Method),
	})
	if err != nil {
		logger.Fatal("Failed to create chunker", zap.Error(err))
	}

	// Create use case services
	ingestSvc := ingestuc.New(st, ch, embedder, ingestuc.Config{
		Workers:          cfg.Processing.Workers,
		EmbedConcurrency: cfg.Processing.EmbedConcurrency,
		Timeout:          time.Duration(cfg.Processing.TimeoutSec) * time.Second,
	}, logger)
	answerSvc := answeruc.New(st, st, embedder, answeruc.Config{
		TopK:           cfg.Retrieval.TopK,
		MinScore:       cfg.Retrieval.MinScore,
		MaxAnswerChars: cfg.Retrieval.MaxAnswerChars,
	})
	documentSvc := documentuc.New(st, cfg.Storage.SnapshotPath, logger)
	summarySvc := summaryuc.New(st, summarizer.NewFrequency())
	healthSvc := healthuc.New(st, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(
		ingestSvc, answerSvc, documentSvc, summarySvc, healthSvc,
		extract.Plain{}, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during HTTP shutdown", zap.Error(err))
	}

	// Drain in-flight ingestion before the final snapshot
	if err := ingestSvc.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during ingest shutdown", zap.Error(err))
	}

	if cfg.Storage.SnapshotPath != "" {
		if err := documentSvc.SaveState(); err != nil {
			logger.Error("Failed to save snapshot", zap.Error(err))
		}
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement domain.HealthChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented
func buildEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
	})

	var embedder domain.Embedder = base
	if cfg.CacheSize > 0 {
		embedder = embeddinguc.NewCached(base, cfg.CacheSize)
	}

	return embeddinguc.NewInstrumented(embedder, cfg.Provider, cfg.Model, logger)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Request-scoped logger for the layers below
			reqLogger := logger.With(zap.String("request_id", requestID))
			r = r.WithContext(logpkg.ContextWithLogger(r.Context(), reqLogger))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

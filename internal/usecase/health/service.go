// Package health reports service readiness.
package health

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Counter reports store occupancy.
type Counter interface {
	Counts() (documents, chunks int)
}

// Report is the health probe response payload.
type Report struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
	Embedder  string `json:"embedder,omitempty"`
}

// Service aggregates store occupancy and embedding provider availability.
type Service struct {
	counter Counter
	checker domain.HealthChecker // nil when the provider exposes no probe
}

// New creates a health service. checker may be nil.
func New(counter Counter, checker domain.HealthChecker) *Service {
	return &Service{counter: counter, checker: checker}
}

// Check returns the current health report. Provider failures degrade the
// report instead of failing it: the service still serves committed documents
// when the embedding provider is down.
func (s *Service) Check(ctx context.Context) Report {
	docs, chunks := s.counter.Counts()
	report := Report{Status: "ok", Documents: docs, Chunks: chunks}

	if s.checker != nil {
		if err := s.checker.HealthCheck(ctx); err != nil {
			report.Status = "degraded"
			report.Embedder = err.Error()
		} else {
			report.Embedder = "ok"
		}
	}
	return report
}

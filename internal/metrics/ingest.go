package metrics

import "github.com/prometheus/client_golang/prometheus"

// Document ingestion Prometheus metrics.
var (
	DocumentsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "documents_processed_total",
			Help:      "Total number of document processing runs by outcome",
		},
		[]string{"status"}, // "completed" / "failed"
	)

	ProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docdex",
			Name:      "document_processing_duration_seconds",
			Help:      "End-to-end document processing duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	ChunksIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "chunks_indexed_total",
			Help:      "Total number of chunks committed to the vector index",
		},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers Prometheus ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(DocumentsProcessedTotal)
	prometheus.MustRegister(ProcessingDuration)
	prometheus.MustRegister(ChunksIndexedTotal)
	ingestMetricsRegistered = true
}

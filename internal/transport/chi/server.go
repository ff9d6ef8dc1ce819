// Package chi is the HTTP transport: request decoding, routing, and the
// mapping from domain errors to status codes.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/extract"
	answeruc "github.com/kailas-cloud/docdex/internal/usecase/answer"
	documentuc "github.com/kailas-cloud/docdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
	summaryuc "github.com/kailas-cloud/docdex/internal/usecase/summary"
)

type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeUnauthorized      errorCode = "unauthorized"
	codeValidationFailed  errorCode = "validation_failed"
	codeDocumentNotFound  errorCode = "document_not_found"
	codeDuplicateDocument errorCode = "duplicate_document"
	codeVectorDimMismatch errorCode = "vector_dim_mismatch"
	codeExtractionFailed  errorCode = "extraction_failed"
	codeStateCorrupt      errorCode = "state_corrupt"
	codeEmbeddingProvider errorCode = "embedding_provider_error"
	codeProcessingTimeout errorCode = "processing_timeout"
	codeInternalError     errorCode = "internal_error"
)

// errorResponse is the error payload for every non-2xx response.
type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes the document API over chi.
type Server struct {
	ingest        *ingestuc.Service
	answer        *answeruc.Service
	documents     *documentuc.Service
	summary       *summaryuc.Service
	health        *healthuc.Service
	extractor     extract.Extractor
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	answer *answeruc.Service,
	documents *documentuc.Service,
	summary *summaryuc.Service,
	health *healthuc.Service,
	extractor extract.Extractor,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:    ingest,
		answer:    answer,
		documents: documents,
		summary:   summary,
		health:    health,
		extractor: extractor,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrDuplicateDocument, http.StatusConflict, codeDuplicateDocument),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeVectorDimMismatch),
		sentinelHandler(domain.ErrExtraction, http.StatusBadRequest, codeExtractionFailed),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrStoreCorrupt, http.StatusInternalServerError, codeStateCorrupt),
		sentinelHandler(domain.ErrIndexCorrupt, http.StatusInternalServerError, codeStateCorrupt),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrProcessingTimeout, http.StatusGatewayTimeout, codeProcessingTimeout),
	}
	return s
}

// Routes registers all API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/documents", s.submitDocument)
	r.Get("/documents/{id}", s.getDocument)
	r.Delete("/documents/{id}", s.deleteDocument)
	r.Get("/documents/{id}/status", s.getStatus)
	r.Delete("/documents/{id}/status", s.clearStatus)
	r.Post("/documents/{id}/question", s.askQuestion)
	r.Get("/documents/{id}/summary", s.getSummary)
	r.Post("/state/save", s.saveState)
	r.Post("/state/load", s.loadState)
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

type submitRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Text       string `json:"text"`
}

type submitResponse struct {
	DocumentID string `json:"document_id"`
	State      string `json:"state"`
}

// submitDocument handles POST /documents. A JSON body carries the text
// inline; a text/plain body goes through the extractor.
func (s *Server) submitDocument(w http.ResponseWriter, r *http.Request) {
	var req submitRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		req.DocumentID = r.URL.Query().Get("document_id")
		result, err := s.extractor.Extract(r.Body)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		req.Text = result.Text
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id, err := s.ingest.Submit(req.DocumentID, req.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		DocumentID: id,
		State:      string(domain.StateQueued),
	})
}

type statusResponse struct {
	DocumentID string `json:"document_id"`
	State      string `json:"state"`
	Progress   int    `json:"progress"`
	Error      string `json:"error,omitempty"`
}

// getStatus handles GET /documents/{id}/status.
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.ingest.GetStatus(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		DocumentID: status.DocumentID,
		State:      string(status.State),
		Progress:   status.Progress,
		Error:      status.Error,
	})
}

// clearStatus handles DELETE /documents/{id}/status.
func (s *Server) clearStatus(w http.ResponseWriter, r *http.Request) {
	if err := s.ingest.ClearStatus(chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type documentResponse struct {
	DocumentID string    `json:"document_id"`
	ChunkCount int       `json:"chunk_count"`
	TextLength int       `json:"text_length"`
	CreatedAt  time.Time `json:"created_at"`
}

// getDocument handles GET /documents/{id}.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentResponse{
		DocumentID: doc.ID,
		ChunkCount: len(doc.Chunks),
		TextLength: len([]rune(doc.FullText)),
		CreatedAt:  doc.CreatedAt,
	})
}

// deleteDocument handles DELETE /documents/{id}.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	s.documents.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type questionRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources,omitempty"`
}

// askQuestion handles POST /documents/{id}/question.
func (s *Server) askQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	answer, err := s.answer.Answer(r.Context(), req.Question, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Answer:     answer.Text,
		Confidence: answer.Confidence,
		Sources:    answer.Sources,
	})
}

type summaryResponse struct {
	Overview    string   `json:"overview"`
	KeyFindings []string `json:"key_findings"`
	Figures     []string `json:"figures,omitempty"`
	Keywords    []string `json:"keywords"`
}

// getSummary handles GET /documents/{id}/summary.
func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary.GetSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Overview:    sum.Overview,
		KeyFindings: sum.KeyFindings,
		Figures:     sum.Figures,
		Keywords:    sum.Keywords,
	})
}

// saveState handles POST /state/save.
func (s *Server) saveState(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.SaveState(); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// loadState handles POST /state/load.
func (s *Server) loadState(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.LoadState(); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrDuplicateDocument,
		domain.ErrValidation,
		domain.ErrVectorDimMismatch,
		domain.ErrExtraction,
		domain.ErrStoreCorrupt,
		domain.ErrIndexCorrupt,
		domain.ErrEmbeddingProviderError,
		domain.ErrProcessingTimeout,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// Package chi exposes the service over HTTP: knowledge-base management,
// document ingest, and the query endpoints in sync and SSE-streamed form.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	logpkg "github.com/kailas-cloud/ragdex/internal/logger"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
)

// maxQueryScopes caps how many knowledge bases one query may target.
const maxQueryScopes = 20

// ErrorCode identifies an API error class for clients.
type ErrorCode string

const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeKnowledgeBaseNotFound  ErrorCode = "knowledge_base_not_found"
	CodeKnowledgeBaseExists    ErrorCode = "knowledge_base_already_exists"
	CodeDocumentNotFound       ErrorCode = "document_not_found"
	CodeQueryFailed            ErrorCode = "query_failed"
	CodeChatProviderError      ErrorCode = "chat_provider_error"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires HTTP routes to the use-case services.
type Server struct {
	knowledge     KnowledgeService
	documents     DocumentService
	query         AnswerService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	knowledge KnowledgeService,
	documents DocumentService,
	query AnswerService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		knowledge: knowledge,
		documents: documents,
		query:     query,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrKnowledgeBaseNotFound, http.StatusNotFound, CodeKnowledgeBaseNotFound),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrKnowledgeBaseExists, http.StatusConflict, CodeKnowledgeBaseExists),
		sentinelHandler(domain.ErrEmptyContent, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrQueryFailed, http.StatusBadGateway, CodeQueryFailed),
		sentinelHandler(domain.ErrStructuredOutputFailed, http.StatusBadGateway, CodeQueryFailed),
		sentinelHandler(domain.ErrChatProviderError, http.StatusBadGateway, CodeChatProviderError),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
	}
	return s
}

// Routes registers all endpoints on a router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/knowledge-bases", func(r chi.Router) {
			r.Post("/", s.CreateKnowledgeBase)
			r.Get("/", s.ListKnowledgeBases)
			r.Get("/{id}", s.GetKnowledgeBase)
			r.Delete("/{id}", s.DeleteKnowledgeBase)
			r.Post("/{id}/documents", s.IngestDocument)
			r.Delete("/{id}/documents/{docID}", s.DeleteDocument)
		})
		r.Post("/query", s.Query)
		r.Post("/query/stream", s.QueryStream)
		r.Post("/query/structured", s.QueryStructured)
	})
}

// --- Knowledge bases ---

type createKnowledgeBaseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type knowledgeBaseResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	DocumentCount int       `json:"document_count"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateKnowledgeBase handles POST /api/v1/knowledge-bases.
func (s *Server) CreateKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	var req createKnowledgeBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	kb, err := s.knowledge.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, knowledgeBaseToResponse(kb))
}

// ListKnowledgeBases handles GET /api/v1/knowledge-bases.
func (s *Server) ListKnowledgeBases(w http.ResponseWriter, r *http.Request) {
	kbs, err := s.knowledge.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]knowledgeBaseResponse, len(kbs))
	for i, kb := range kbs {
		items[i] = knowledgeBaseToResponse(kb)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetKnowledgeBase handles GET /api/v1/knowledge-bases/{id}.
func (s *Server) GetKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	kb, err := s.knowledge.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, knowledgeBaseToResponse(kb))
}

// DeleteKnowledgeBase handles DELETE /api/v1/knowledge-bases/{id}.
func (s *Server) DeleteKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	if err := s.knowledge.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Documents ---

type ingestDocumentRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type ingestDocumentResponse struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

// IngestDocument handles POST /api/v1/knowledge-bases/{id}/documents.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	docID, chunks, err := s.documents.Ingest(r.Context(), chi.URLParam(r, "id"), req.Source, req.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestDocumentResponse{DocumentID: docID, Chunks: chunks})
}

// DeleteDocument handles DELETE /api/v1/knowledge-bases/{id}/documents/{docID}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	err := s.documents.Delete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "docID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Query ---

type queryRequest struct {
	KnowledgeBaseIDs []string `json:"kb_ids"`
	Question         string   `json:"question"`
}

type queryResponse struct {
	Answer         string   `json:"answer"`
	KnowledgeBases []string `json:"knowledge_bases"`
}

// decodeQueryRequest validates the request and resolves the target bases,
// so every query endpoint rejects unknown ids before touching the pipeline.
func (s *Server) decodeQueryRequest(w http.ResponseWriter, r *http.Request) (queryRequest, []domain.KnowledgeBase, bool) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return queryRequest{}, nil, false
	}
	if len(req.KnowledgeBaseIDs) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "kb_ids is required")
		return queryRequest{}, nil, false
	}
	if len(req.KnowledgeBaseIDs) > maxQueryScopes {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "too many knowledge bases in one query")
		return queryRequest{}, nil, false
	}

	kbs, err := s.knowledge.Resolve(r.Context(), req.KnowledgeBaseIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return queryRequest{}, nil, false
	}
	return req, kbs, true
}

// Query handles POST /api/v1/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	req, kbs, ok := s.decodeQueryRequest(w, r)
	if !ok {
		return
	}

	answer, err := s.query.Answer(r.Context(), req.KnowledgeBaseIDs, req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	names := make([]string, len(kbs))
	for i, kb := range kbs {
		names[i] = kb.Name
	}
	writeJSON(w, http.StatusOK, queryResponse{Answer: answer, KnowledgeBases: names})
}

// QueryStructured handles POST /api/v1/query/structured: same pipeline
// as Query, but the answer comes back typed with key points.
func (s *Server) QueryStructured(w http.ResponseWriter, r *http.Request) {
	req, _, ok := s.decodeQueryRequest(w, r)
	if !ok {
		return
	}

	answer, err := s.query.AnswerStructured(r.Context(), req.KnowledgeBaseIDs, req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// QueryStream handles POST /api/v1/query/stream as Server-Sent Events.
// Each answer chunk arrives as a data event; the stream ends with a done
// event. Errors after the first byte arrive as an error event because the
// status line is already on the wire.
func (s *Server) QueryStream(w http.ResponseWriter, r *http.Request) {
	req, _, ok := s.decodeQueryRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, CodeInternalError, "streaming unsupported")
		return
	}

	stream := s.query.AnswerStream(r.Context(), req.KnowledgeBaseIDs, req.Question)
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			writeSSE(w, "done", "[DONE]")
			flusher.Flush()
			return
		}
		if err != nil {
			// Headers are already flushed, so the request-scoped logger
			// (with request_id) is the only way to tie the truncated
			// response back to its cause.
			logpkg.FromContext(r.Context()).Warn("answer stream failed", zap.Error(err))
			writeSSE(w, "error", "stream interrupted")
			flusher.Flush()
			return
		}
		writeSSE(w, "", chunk)
		flusher.Flush()
	}
}

func writeSSE(w http.ResponseWriter, event, data string) {
	if event != "" {
		_, _ = io.WriteString(w, "event: "+event+"\n")
	}
	_, _ = io.WriteString(w, "data: "+data+"\n\n")
}

// --- Health and metrics ---

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

func knowledgeBaseToResponse(kb domain.KnowledgeBase) knowledgeBaseResponse {
	return knowledgeBaseResponse{
		ID:            kb.ID,
		Name:          kb.Name,
		Description:   kb.Description,
		DocumentCount: kb.DocumentCount,
		QuestionCount: kb.QuestionCount,
		CreatedAt:     kb.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrKnowledgeBaseNotFound,
		domain.ErrKnowledgeBaseExists,
		domain.ErrDocumentNotFound,
		domain.ErrEmptyContent,
		domain.ErrQueryFailed,
		domain.ErrStructuredOutputFailed,
		domain.ErrChatProviderError,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
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
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

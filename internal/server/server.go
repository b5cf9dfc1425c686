package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nyayabot/internal/domain"
	"nyayabot/internal/logger"
	"nyayabot/internal/service"
)

// Server is the thin request-routing layer over the QA orchestrator. All
// pipeline decisions live in the service; handlers only validate, dispatch
// and translate errors into user-facing responses.
type Server struct {
	qa             domain.QAService
	requestTimeout time.Duration
}

// New creates the HTTP layer. requestTimeout bounds each request's pipeline
// run; zero means no per-request deadline beyond the client's.
func New(qa domain.QAService, requestTimeout time.Duration) *Server {
	return &Server{qa: qa, requestTimeout: requestTimeout}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/ask", s.handleAsk)
	r.POST("/batch-ask", s.handleBatchAsk)
	r.GET("/health", s.handleHealth)
	r.GET("/languages", s.handleLanguages)
	r.GET("/documents/:name/summary", s.handleDocumentSummary)
	return r
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	query, err := req.toQuery()
	if err != nil {
		s.writeError(c, err)
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()
	answer, err := s.qa.Answer(ctx, query)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answerToResponse(answer))
}

func (s *Server) handleBatchAsk(c *gin.Context) {
	// Items are decoded individually so one malformed entry fails alone
	// instead of rejecting the whole batch.
	var raw []json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		s.writeError(c, &domain.ValidationError{Field: "body", Reason: "expected a JSON array of ask requests"})
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()
	responses := make([]askResponse, len(raw))
	for i, item := range raw {
		var req askRequest
		if err := json.Unmarshal(item, &req); err != nil {
			responses[i] = failureResponse(&domain.ValidationError{Field: "body", Reason: "malformed JSON"})
			continue
		}
		query, err := req.toQuery()
		if err != nil {
			responses[i] = failureResponse(err)
			continue
		}
		answer, err := s.qa.Answer(ctx, query)
		if err != nil {
			responses[i] = failureResponse(err)
			continue
		}
		responses[i] = answerToResponse(answer)
	}
	c.JSON(http.StatusOK, responses)
}

func (s *Server) handleHealth(c *gin.Context) {
	h := s.qa.Health(c.Request.Context())
	status := http.StatusOK
	if h.Overall != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, h)
}

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages": []languageDTO{
			{Code: string(domain.LangEnglish), Name: domain.LangEnglish.Name()},
			{Code: string(domain.LangHindi), Name: domain.LangHindi.Name()},
			{Code: string(domain.LangMarathi), Name: domain.LangMarathi.Name()},
		},
		"auto_detect": true,
	})
}

func (s *Server) handleDocumentSummary(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()
	summary, err := s.qa.DocumentSummary(ctx, c.Param("name"))
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, summaryResponse{Success: false, Error: err.Error()})
			return
		}
		status, msg := statusForError(err)
		c.JSON(status, summaryResponse{Success: false, Error: msg})
		return
	}
	c.JSON(http.StatusOK, summaryResponse{
		Summary:  summary.Text,
		Document: summary.Document,
		Degraded: summary.Degraded,
		Success:  true,
	})
}

func (s *Server) requestContext(c *gin.Context) (ctx context.Context, cancel context.CancelFunc) {
	ctx = c.Request.Context()
	if s.requestTimeout > 0 {
		return context.WithTimeout(ctx, s.requestTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, msg := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed", "error", err)
	}
	resp := failureResponse(err)
	resp.Error = msg
	c.JSON(status, resp)
}

// failureResponse builds the uniform success:false body for an error.
func failureResponse(err error) askResponse {
	_, msg := statusForError(err)
	return askResponse{Success: false, Error: msg}
}

// statusForError maps the error taxonomy onto HTTP statuses and
// client-safe messages. Internal details never reach the client.
func statusForError(err error) (int, string) {
	var (
		validationErr *domain.ValidationError
		notReadyErr   *domain.IndexNotReadyError
		translateErr  *domain.TranslationError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &notReadyErr):
		return http.StatusServiceUnavailable, notReadyErr.Error()
	case errors.As(err, &translateErr):
		return http.StatusBadGateway, "the translation service is unavailable; please retry or ask in English"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "the request timed out; please retry"
	default:
		return http.StatusInternalServerError, "an internal error occurred while processing the question"
	}
}

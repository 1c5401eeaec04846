// Package api exposes the question-answering service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docrag/internal/domain"
)

// DefaultTopK is used when a query request omits top_k.
const DefaultTopK = 3

// Server wires HTTP routes to a RAG service.
type Server struct {
	echo    *echo.Echo
	service domain.RAGService
	metrics *Metrics
	logger  *slog.Logger
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

// SourceChunk identifies one chunk used to ground an answer.
type SourceChunk struct {
	Source  string `json:"source"`
	ChunkID int    `json:"chunk_id"`
}

// QueryResponse is the body returned by POST /query.
type QueryResponse struct {
	Answer  string        `json:"answer"`
	Sources []SourceChunk `json:"sources"`
}

// EchoRequest is the body of POST /echo.
type EchoRequest struct {
	Name string `json:"name"`
}

// New builds the HTTP server. metrics may be nil.
func New(service domain.RAGService, metrics *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	s := &Server{echo: e, service: service, metrics: metrics, logger: logger}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(requestID())
	e.Use(requestLog(logger, metrics))

	e.GET("/health", s.health)
	e.POST("/echo", s.echoName)
	e.POST("/query", s.query)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) echoName(c echo.Context) error {
	var body EchoRequest
	if err := decodeStrict(c, &body); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) query(c echo.Context) error {
	var body QueryRequest
	if err := decodeStrict(c, &body); err != nil {
		return err
	}
	topK := DefaultTopK
	if body.TopK != nil {
		topK = *body.TopK
	}
	query := strings.TrimSpace(body.Query)

	answer, chunks, err := s.service.AnswerQuestion(c.Request().Context(), query, topK)
	if err != nil {
		return err
	}
	s.metrics.answers.WithLabelValues(fmt.Sprint(len(chunks) > 0)).Inc()
	s.metrics.retrieved.Observe(float64(len(chunks)))

	resp := QueryResponse{Answer: answer, Sources: make([]SourceChunk, len(chunks))}
	for i, ch := range chunks {
		resp.Sources[i] = SourceChunk{Source: ch.Source, ChunkID: ch.ChunkID}
	}
	return c.JSON(http.StatusOK, resp)
}

// decodeStrict rejects unknown fields and malformed JSON as invalid input.
func decodeStrict(c echo.Context, v any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// StatusCode maps an error to the HTTP status reported to clients.
func StatusCode(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotIndexed):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLLMRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrLLM):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := StatusCode(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Message != nil {
		msg = fmt.Sprint(he.Message)
	}
	c.Set("error_message", msg)
	if err := c.JSON(code, map[string]string{"error": msg}); err != nil {
		s.logger.Error("failed to write error response", "error", err)
	}
}

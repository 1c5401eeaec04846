package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docrag/internal/domain"
	"docrag/internal/prompt"
)

// NoRelevantInformationAnswer is returned when retrieval finds nothing to
// ground an answer on. The generator is not called in that case.
const NoRelevantInformationAnswer = "No relevant information found to answer the question."

// Bounds of an accepted top_k.
const (
	MinTopK = 1
	MaxTopK = 10
)

// RAGServiceImpl answers questions about one dataset.
type RAGServiceImpl struct {
	store     domain.VectorStore
	generator domain.Generator
	dataset   string
	chatModel string
	logger    *slog.Logger
}

var _ domain.RAGService = (*RAGServiceImpl)(nil)

// NewRAGService creates a service bound to dataset. An empty chatModel lets
// the generator pick its default.
func NewRAGService(store domain.VectorStore, generator domain.Generator, dataset, chatModel string, logger *slog.Logger) *RAGServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &RAGServiceImpl{store: store, generator: generator, dataset: dataset, chatModel: chatModel, logger: logger}
}

// Dataset returns the dataset the service answers from.
func (s *RAGServiceImpl) Dataset() string { return s.dataset }

// IndexDataset rebuilds a dataset. An empty req.Dataset means the service's own.
func (s *RAGServiceImpl) IndexDataset(ctx context.Context, req domain.IndexRequest) (int, int, error) {
	if req.Dataset == "" {
		req.Dataset = s.dataset
	}
	start := time.Now()
	docs, chunks, err := s.store.IndexDataset(ctx, req)
	if err != nil {
		return 0, 0, err
	}
	s.logger.Info("dataset indexed",
		"dataset", req.Dataset,
		"docs", docs,
		"chunks", chunks,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return docs, chunks, nil
}

// AnswerQuestion retrieves the topK chunks most similar to query and asks the
// generator to answer from them alone.
func (s *RAGServiceImpl) AnswerQuestion(ctx context.Context, query string, topK int) (string, []domain.IndexedChunk, error) {
	if err := ValidateQuery(query, topK); err != nil {
		return "", nil, err
	}
	chunks, err := s.store.Query(ctx, s.dataset, query, topK)
	if err != nil {
		return "", nil, err
	}
	if len(chunks) == 0 {
		s.logger.Info("no relevant chunks", "dataset", s.dataset)
		return NoRelevantInformationAnswer, []domain.IndexedChunk{}, nil
	}
	answer, err := s.generator.GenerateResponse(ctx, prompt.Build(query, chunks), s.chatModel)
	if err != nil {
		return "", nil, fmt.Errorf("generate answer: %w", err)
	}
	return answer, chunks, nil
}

// ValidateQuery checks a question request before any retrieval happens.
func ValidateQuery(query string, topK int) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	if topK < MinTopK || topK > MaxTopK {
		return fmt.Errorf("%w: top_k must be between %d and %d, got %d", domain.ErrInvalidInput, MinTopK, MaxTopK, topK)
	}
	return nil
}

package memory

import (
	"context"
	"fmt"
	"sync"

	"docrag/internal/domain"
	"docrag/internal/retriever"
	"docrag/internal/vectorstore"
)

type dataset struct {
	dimension      int
	embeddingModel string
	chunks         []domain.IndexedChunk
}

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu       sync.RWMutex
	datasets map[string]*dataset
}

var _ vectorstore.Storage = (*Storage)(nil)

func NewStorage() *Storage { return &Storage{datasets: make(map[string]*dataset)} }

func (s *Storage) Reset(_ context.Context, name string, dimension int, embeddingModel string) error {
	if dimension < 0 {
		return fmt.Errorf("%w: invalid dimension %d", domain.ErrConfiguration, dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[name] = &dataset{dimension: dimension, embeddingModel: embeddingModel}
	return nil
}

func (s *Storage) Upsert(_ context.Context, name string, chunks []domain.IndexedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasets[name]
	if !ok {
		return fmt.Errorf("%w: dataset %s", domain.ErrNotIndexed, name)
	}
	for _, c := range chunks {
		if len(c.Embedding) != ds.dimension {
			return fmt.Errorf("%w: %s has %d dimensions, expected %d", domain.ErrDimensionMismatch, c.Source, len(c.Embedding), ds.dimension)
		}
	}
	ds.chunks = append(ds.chunks, chunks...)
	return nil
}

func (s *Storage) Search(_ context.Context, name string, vector []float64, topK int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[name]
	if !ok {
		return nil, fmt.Errorf("%w: dataset %s", domain.ErrNotIndexed, name)
	}
	return retriever.Rank(vector, ds.chunks, retriever.Options{TopK: topK})
}

func (s *Storage) EmbeddingModel(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[name]
	if !ok {
		return "", fmt.Errorf("%w: dataset %s", domain.ErrNotIndexed, name)
	}
	return ds.embeddingModel, nil
}

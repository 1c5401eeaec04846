package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"docrag/internal/domain"
	"docrag/internal/vectorstore"
)

// pointNamespace seeds deterministic point ids derived from chunk sources.
var pointNamespace = uuid.MustParse("6f1d3a52-0c4e-4b8e-9a57-2f7d3c1b9e40")

// Storage is a minimal REST client to Qdrant with one collection per dataset.
// It assumes cosine distance.
type Storage struct {
	url       string
	apiKey    string
	prefix    string
	batchSize int
	client    *http.Client

	mu     sync.Mutex
	models map[string]string
}

var _ vectorstore.Storage = (*Storage)(nil)

type Config struct {
	URL              string
	APIKey           string
	CollectionPrefix string
	Timeout          time.Duration
	BatchSize        int
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 256
	}
	return &Storage{
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		prefix:    cfg.CollectionPrefix,
		batchSize: batch,
		client:    &http.Client{Timeout: timeout},
		models:    make(map[string]string),
	}
}

type payload struct {
	Text           string `json:"text"`
	DocPath        string `json:"doc_path"`
	Source         string `json:"source"`
	ChunkID        int    `json:"chunk_id"`
	EmbeddingModel string `json:"embedding_model"`
}

type point struct {
	ID      string    `json:"id"`
	Vector  []float64 `json:"vector,omitempty"`
	Payload payload   `json:"payload"`
}

func (s *Storage) collectionURL(dataset string) string {
	return fmt.Sprintf("%s/collections/%s", s.url, url.PathEscape(s.prefix+dataset))
}

// pointID derives a stable point id from a chunk source.
func (s *Storage) pointID(source string) string {
	return uuid.NewSHA1(pointNamespace, []byte(source)).String()
}

// Reset drops the dataset's collection and recreates it.
func (s *Storage) Reset(ctx context.Context, dataset string, dimension int, embeddingModel string) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", domain.ErrConfiguration, dimension)
	}
	status, err := s.do(ctx, http.MethodDelete, s.collectionURL(dataset), nil, nil)
	if err != nil && status != http.StatusNotFound {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if _, err := s.do(ctx, http.MethodPut, s.collectionURL(dataset), body, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.models[dataset] = embeddingModel
	s.mu.Unlock()
	return nil
}

// Upsert stores chunks in batches. Every point records the embedding model
// given to the last Reset of the dataset.
func (s *Storage) Upsert(ctx context.Context, dataset string, chunks []domain.IndexedChunk) error {
	s.mu.Lock()
	model, ok := s.models[dataset]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: dataset %s was not reset before upsert", domain.ErrConfiguration, dataset)
	}
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		points := make([]point, 0, end-start)
		for _, c := range chunks[start:end] {
			points = append(points, point{
				ID:     s.pointID(c.Source),
				Vector: c.Embedding,
				Payload: payload{
					Text:           c.Text,
					DocPath:        c.DocPath,
					Source:         c.Source,
					ChunkID:        c.ChunkID,
					EmbeddingModel: model,
				},
			})
		}
		body := map[string]any{"points": points}
		if _, err := s.do(ctx, http.MethodPut, s.collectionURL(dataset)+"/points?wait=true", body, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, dataset string, vector []float64, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		return []domain.ScoredChunk{}, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload payload `json:"payload"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodPost, s.collectionURL(dataset)+"/points/search", req, &resp)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: dataset %s", domain.ErrNotIndexed, dataset)
		}
		return nil, err
	}
	results := make([]domain.ScoredChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.ScoredChunk{
			Chunk: domain.IndexedChunk{
				Text:    r.Payload.Text,
				DocPath: r.Payload.DocPath,
				Source:  r.Payload.Source,
				ChunkID: r.Payload.ChunkID,
			},
			Score: r.Score,
		})
	}
	return results, nil
}

// EmbeddingModel reads the model recorded on any point of the collection.
func (s *Storage) EmbeddingModel(ctx context.Context, dataset string) (string, error) {
	req := map[string]any{"limit": 1, "with_payload": true}
	var resp struct {
		Result struct {
			Points []point `json:"points"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodPost, s.collectionURL(dataset)+"/points/scroll", req, &resp)
	if err != nil {
		if status == http.StatusNotFound {
			return "", fmt.Errorf("%w: dataset %s", domain.ErrNotIndexed, dataset)
		}
		return "", err
	}
	if len(resp.Result.Points) == 0 {
		return "", fmt.Errorf("%w: dataset %s has no points", domain.ErrNotIndexed, dataset)
	}
	model := resp.Result.Points[0].Payload.EmbeddingModel
	if model == "" {
		return "", fmt.Errorf("%w: dataset %s: embedding_model missing from payload", domain.ErrCorruptIndex, dataset)
	}
	return model, nil
}

// do sends a JSON request and decodes the response into out when non-nil.
// The HTTP status is returned alongside any error.
func (s *Storage) do(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("qdrant: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, fmt.Errorf("qdrant: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("qdrant: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"docrag/internal/chunker"
	"docrag/internal/domain"
	"docrag/internal/indexer"
)

// Options configures a Store.
type Options struct {
	// Chunkers builds the chunker for each indexing request. Defaults to
	// chunker.SeparatorFactory.
	Chunkers   chunker.Factory
	Extensions []string
	MinScore   *float64
	Logger     *slog.Logger
}

// Store implements domain.VectorStore on top of a Storage backend.
type Store struct {
	storage Storage
	client  domain.Embedder
	opts    Options
	logger  *slog.Logger
}

var _ domain.VectorStore = (*Store)(nil)

// New creates a store that embeds through client and persists into storage.
func New(storage Storage, client domain.Embedder, opts Options) *Store {
	if opts.Chunkers == nil {
		opts.Chunkers = chunker.SeparatorFactory
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{storage: storage, client: client, opts: opts, logger: logger}
}

// IndexDataset rebuilds the dataset from req.SourceDir.
func (s *Store) IndexDataset(ctx context.Context, req domain.IndexRequest) (int, int, error) {
	if err := ValidateDatasetName(req.Dataset); err != nil {
		return 0, 0, err
	}
	ch, err := s.opts.Chunkers(req.Chunking)
	if err != nil {
		return 0, 0, err
	}
	writer := &storageWriter{ctx: ctx, storage: s.storage, dataset: req.Dataset, embeddingModel: req.EmbeddingModel}
	ix := indexer.New(indexer.Config{
		SourceDir:      req.SourceDir,
		EmbeddingModel: req.EmbeddingModel,
		Extensions:     s.opts.Extensions,
	}, ch, writer, s.logger)
	return ix.Run(ctx, s.client)
}

// Query embeds queryText with the dataset's embedding model and returns the
// topK most similar chunks.
func (s *Store) Query(ctx context.Context, dataset, queryText string, topK int) ([]domain.IndexedChunk, error) {
	if err := ValidateDatasetName(dataset); err != nil {
		return nil, err
	}
	model, err := s.storage.EmbeddingModel(ctx, dataset)
	if err != nil {
		return nil, err
	}
	vector, err := s.client.EmbedText(ctx, queryText, model)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	scored, err := s.storage.Search(ctx, dataset, vector, topK)
	if err != nil {
		return nil, err
	}
	out := make([]domain.IndexedChunk, 0, len(scored))
	for _, sc := range scored {
		if s.opts.MinScore != nil && sc.Score < *s.opts.MinScore {
			continue
		}
		out = append(out, sc.Chunk)
	}
	return out, nil
}

// storageWriter adapts a Storage to domain.IndexWriter for one dataset.
type storageWriter struct {
	ctx            context.Context
	storage        Storage
	dataset        string
	embeddingModel string
}

func (w *storageWriter) SaveIndexedChunks(chunks []domain.IndexedChunk, _ []domain.ManifestDocument) error {
	dim := 0
	if len(chunks) > 0 {
		dim = len(chunks[0].Embedding)
	}
	if err := w.storage.Reset(w.ctx, w.dataset, dim, w.embeddingModel); err != nil {
		return err
	}
	return w.storage.Upsert(w.ctx, w.dataset, chunks)
}

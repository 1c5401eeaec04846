// Package filestore is the default dataset backend: sharded JSON index files
// plus a manifest under <dest>/indexes/<dataset>/.
package filestore

import (
	"context"
	"log/slog"

	"docrag/internal/chunker"
	"docrag/internal/domain"
	"docrag/internal/indexer"
	"docrag/internal/indexfile"
	"docrag/internal/retriever"
	"docrag/internal/vectorstore"
)

// Options configures a Store.
type Options struct {
	Chunkers   chunker.Factory
	Extensions []string
	MinScore   *float64
	Logger     *slog.Logger
}

// Store implements domain.VectorStore over the on-disk index format.
type Store struct {
	dest   string
	client domain.Embedder
	opts   Options
	logger *slog.Logger
}

var _ domain.VectorStore = (*Store)(nil)

// New creates a store rooted at dest.
func New(dest string, client domain.Embedder, opts Options) *Store {
	if opts.Chunkers == nil {
		opts.Chunkers = chunker.SeparatorFactory
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dest: dest, client: client, opts: opts, logger: logger}
}

// IndexDataset rebuilds <dest>/indexes/<dataset> from req.SourceDir.
func (s *Store) IndexDataset(ctx context.Context, req domain.IndexRequest) (int, int, error) {
	if err := vectorstore.ValidateDatasetName(req.Dataset); err != nil {
		return 0, 0, err
	}
	ch, err := s.opts.Chunkers(req.Chunking)
	if err != nil {
		return 0, 0, err
	}
	writer, err := indexfile.NewWriter(s.dest, req.Dataset, req.EmbeddingModel, req.MaxChunksPerIndex, s.logger)
	if err != nil {
		return 0, 0, err
	}
	ix := indexer.New(indexer.Config{
		SourceDir:      req.SourceDir,
		EmbeddingModel: req.EmbeddingModel,
		Extensions:     s.opts.Extensions,
	}, ch, writer, s.logger)
	return ix.Run(ctx, s.client)
}

// Query loads every shard of the dataset and ranks it against queryText.
func (s *Store) Query(ctx context.Context, dataset, queryText string, topK int) ([]domain.IndexedChunk, error) {
	if err := vectorstore.ValidateDatasetName(dataset); err != nil {
		return nil, err
	}
	r := retriever.New(s.client, queryText, indexfile.DatasetDir(s.dest, dataset),
		retriever.Options{TopK: topK, MinScore: s.opts.MinScore}, s.logger)
	model, chunks, err := r.LoadIndexedChunks()
	if err != nil {
		return nil, err
	}
	scored, err := r.ScoreChunks(ctx, model, chunks)
	if err != nil {
		return nil, err
	}
	return retriever.Chunks(scored), nil
}

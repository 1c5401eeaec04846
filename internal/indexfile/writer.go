package indexfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"docrag/internal/domain"
)

// Writer persists an indexing run as shards plus a manifest. It implements
// domain.IndexWriter.
type Writer struct {
	dest              string
	dataset           string
	embeddingModel    string
	maxChunksPerIndex int
	now               func() time.Time
	logger            *slog.Logger
}

var _ domain.IndexWriter = (*Writer)(nil)

// NewWriter creates a writer for one dataset under dest.
func NewWriter(dest, dataset, embeddingModel string, maxChunksPerIndex int, logger *slog.Logger) (*Writer, error) {
	if dataset == "" {
		return nil, fmt.Errorf("%w: dataset name is required", domain.ErrConfiguration)
	}
	if maxChunksPerIndex <= 0 {
		return nil, fmt.Errorf("%w: max_chunks_per_index must be positive, got %d", domain.ErrConfiguration, maxChunksPerIndex)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		dest:              dest,
		dataset:           dataset,
		embeddingModel:    embeddingModel,
		maxChunksPerIndex: maxChunksPerIndex,
		now:               func() time.Time { return time.Now().UTC() },
		logger:            logger,
	}, nil
}

// Dir returns the dataset root this writer rebuilds.
func (w *Writer) Dir() string { return DatasetDir(w.dest, w.dataset) }

// SaveIndexedChunks rebuilds the dataset directory from scratch, writes the
// chunks in order as shards of at most maxChunksPerIndex, and writes the
// manifest last.
func (w *Writer) SaveIndexedChunks(chunks []domain.IndexedChunk, documents []domain.ManifestDocument) error {
	dir := w.Dir()
	if err := recreateDir(dir); err != nil {
		return err
	}
	var entries []domain.ManifestIndexFile
	for n, start := 0, 0; start < len(chunks); n, start = n+1, start+w.maxChunksPerIndex {
		end := min(start+w.maxChunksPerIndex, len(chunks))
		shard := domain.IndexFile{
			Dataset:        w.dataset,
			EmbeddingModel: w.embeddingModel,
			CreatedAt:      w.now(),
			IndexID:        ShardID(n),
			Chunks:         chunks[start:end],
		}
		name := ShardFileName(n)
		if err := writeJSON(filepath.Join(dir, name), shard); err != nil {
			return err
		}
		entries = append(entries, domain.ManifestIndexFile{IndexID: shard.IndexID, Path: name, NumChunks: len(shard.Chunks)})
		w.logger.Debug("wrote shard", "dataset", w.dataset, "index_id", shard.IndexID, "chunks", len(shard.Chunks))
	}
	return w.writeManifest(dir, entries, documents)
}

func (w *Writer) writeManifest(dir string, entries []domain.ManifestIndexFile, documents []domain.ManifestDocument) error {
	total := 0
	for _, e := range entries {
		total += e.NumChunks
	}
	if entries == nil {
		entries = []domain.ManifestIndexFile{}
	}
	if documents == nil {
		documents = []domain.ManifestDocument{}
	}
	manifest := domain.ManifestFile{
		Dataset:        w.dataset,
		EmbeddingModel: w.embeddingModel,
		CreatedAt:      w.now(),
		TotalDocs:      len(documents),
		TotalChunks:    total,
		IndexFiles:     entries,
		Documents:      documents,
	}
	if err := writeJSON(filepath.Join(dir, ManifestName), manifest); err != nil {
		return err
	}
	w.logger.Info("wrote manifest", "dataset", w.dataset, "shards", len(entries), "chunks", total, "docs", len(documents))
	return nil
}

func recreateDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: could not clear %s: %v", domain.ErrConfiguration, dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: could not create %s: %v", domain.ErrConfiguration, dir, err)
	}
	return nil
}

package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"docrag/internal/domain"
	"docrag/internal/indexfile"
)

// Options tunes scoring.
type Options struct {
	TopK int
	// MinScore drops chunks scoring below it when set. Nil keeps the ranking
	// purely positional.
	MinScore *float64
}

// Retriever loads a dataset's shards and ranks them against one query.
type Retriever struct {
	client    domain.Embedder
	queryText string
	dir       string
	opts      Options
	logger    *slog.Logger
}

// New creates a retriever for the dataset rooted at dir.
func New(client domain.Embedder, queryText, dir string, opts Options, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{client: client, queryText: queryText, dir: dir, opts: opts, logger: logger}
}

// LoadIndexedChunks reads the manifest and concatenates every shard in
// manifest order. It returns the embedding model the dataset was built with.
func (r *Retriever) LoadIndexedChunks() (string, []domain.IndexedChunk, error) {
	manifest, err := indexfile.ReadManifest(r.dir)
	if err != nil {
		return "", nil, err
	}
	chunks := make([]domain.IndexedChunk, 0, manifest.TotalChunks)
	for _, entry := range manifest.IndexFiles {
		shard, err := indexfile.ReadIndexFile(r.dir, entry)
		if err != nil {
			return "", nil, err
		}
		chunks = append(chunks, shard.Chunks...)
	}
	r.logger.Debug("loaded dataset", "dir", r.dir, "shards", len(manifest.IndexFiles), "chunks", len(chunks))
	return manifest.EmbeddingModel, chunks, nil
}

// ScoreChunks embeds the query with the dataset's embedding model and returns
// the TopK chunks by cosine similarity, highest first. Ties keep load order.
func (r *Retriever) ScoreChunks(ctx context.Context, embeddingModel string, chunks []domain.IndexedChunk) ([]domain.ScoredChunk, error) {
	queryEmbedding, err := r.client.EmbedText(ctx, r.queryText, embeddingModel)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return Rank(queryEmbedding, chunks, r.opts)
}

// Rank scores chunks against an already embedded query.
func Rank(query []float64, chunks []domain.IndexedChunk, opts Options) ([]domain.ScoredChunk, error) {
	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		score, err := CosineSimilarity(query, c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", c.Source, err)
		}
		if opts.MinScore != nil && score < *opts.MinScore {
			continue
		}
		scored = append(scored, domain.ScoredChunk{Chunk: c, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if opts.TopK >= 0 && opts.TopK < len(scored) {
		scored = scored[:opts.TopK]
	}
	return scored, nil
}

// CosineSimilarity computes dot(a,b) / (|a| * |b|). A zero-norm vector has
// similarity 0 with everything.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Chunks strips scores from a ranking.
func Chunks(scored []domain.ScoredChunk) []domain.IndexedChunk {
	out := make([]domain.IndexedChunk, len(scored))
	for i, s := range scored {
		out[i] = s.Chunk
	}
	return out
}

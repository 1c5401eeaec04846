package retriever

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
	"docrag/internal/indexfile"
)

type staticEmbedder struct {
	vector []float64
	err    error
	model  string
}

func (s *staticEmbedder) EmbedText(_ context.Context, _ string, model string) ([]float64, error) {
	s.model = model
	return s.vector, s.err
}

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestCosineSimilarity(t *testing.T) {
	s, err := CosineSimilarity([]float64{1, 0}, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s)

	s, err = CosineSimilarity([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)

	s, err = CosineSimilarity([]float64{1, 0}, []float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1/math.Sqrt2, s, 1e-12)

	s, err = CosineSimilarity([]float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)

	_, err = CosineSimilarity([]float64{1, 0}, []float64{1, 0, 0})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRetriever_LoadsChunksFromManifestAndShard(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "indexes", "test_dataset")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeJSONFile(t, filepath.Join(dir, "index-0001.json"), map[string]any{
		"chunks": []map[string]any{{
			"text":      "Chunk about Kubernetes pods",
			"source":    "assets/docs/kubernetes_intro.md",
			"embedding": []float64{1, 0},
			"chunk_id":  0,
			"doc_path":  "assets/docs/kubernetes_intro.md",
		}},
		"dataset":         "test_dataset",
		"embedding_model": "models/embedding-001",
		"created_at":      "2024-01-01T00:00:00Z",
		"index_id":        "index-0001",
	})
	writeJSONFile(t, filepath.Join(dir, "manifest.json"), map[string]any{
		"dataset":         "test_dataset",
		"embedding_model": "models/embedding-001",
		"created_at":      "2024-01-01T00:00:00Z",
		"total_docs":      1,
		"total_chunks":    1,
		"index_files":     []map[string]any{{"index_id": "index-0001", "path": "index-0001.json", "num_chunks": 1}},
		"documents": []map[string]any{{
			"doc_id":          "kubernetes_intro.md",
			"doc_path":        "assets/docs/kubernetes_intro.md",
			"hash":            "dummyhash",
			"last_indexed_at": "2024-01-01T00:00:00Z",
		}},
	})

	r := New(&staticEmbedder{}, "What is a Kubernetes pod?", dir, Options{TopK: 1}, nil)
	model, chunks, err := r.LoadIndexedChunks()
	require.NoError(t, err)

	assert.Equal(t, "models/embedding-001", model)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Chunk about Kubernetes pods", chunks[0].Text)
	assert.Equal(t, "assets/docs/kubernetes_intro.md", chunks[0].Source)
	assert.Equal(t, 0, chunks[0].ChunkID)
	assert.Equal(t, "assets/docs/kubernetes_intro.md", chunks[0].DocPath)
}

func TestRetriever_ConcatenatesShardsInManifestOrder(t *testing.T) {
	dest := t.TempDir()
	w, err := indexfile.NewWriter(dest, "ds", "m", 1, nil)
	require.NoError(t, err)
	chunks := []domain.IndexedChunk{
		{Text: "a", Source: "a.md#chunk-0", Embedding: []float64{1, 0}},
		{Text: "b", Source: "a.md#chunk-1", Embedding: []float64{0, 1}, ChunkID: 1},
		{Text: "c", Source: "b.md#chunk-0", Embedding: []float64{1, 1}},
	}
	require.NoError(t, w.SaveIndexedChunks(chunks, nil))

	_, loaded, err := New(&staticEmbedder{}, "q", w.Dir(), Options{}, nil).LoadIndexedChunks()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{loaded[0].Text, loaded[1].Text, loaded[2].Text})
}

func TestRetriever_MissingManifestIsNotIndexed(t *testing.T) {
	_, _, err := New(&staticEmbedder{}, "q", t.TempDir(), Options{}, nil).LoadIndexedChunks()
	assert.ErrorIs(t, err, domain.ErrNotIndexed)
}

func TestRetriever_MalformedManifestIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{"), 0o644))

	_, _, err := New(&staticEmbedder{}, "q", dir, Options{}, nil).LoadIndexedChunks()
	assert.ErrorIs(t, err, domain.ErrCorruptIndex)
}

func TestRetriever_MissingShardIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeJSONFile(t, filepath.Join(dir, "manifest.json"), map[string]any{
		"embedding_model": "m",
		"total_chunks":    1,
		"index_files":     []map[string]any{{"index_id": "index-0000", "path": "index-0000.json", "num_chunks": 1}},
	})

	_, _, err := New(&staticEmbedder{}, "q", dir, Options{}, nil).LoadIndexedChunks()
	assert.ErrorIs(t, err, domain.ErrCorruptIndex)
}

func threeChunks() []domain.IndexedChunk {
	return []domain.IndexedChunk{
		{Text: "high similarity A", DocPath: "assets/docs/a.md", Source: "assets/docs/a.md#chunk-0", Embedding: []float64{1, 0}},
		{Text: "medium similarity B", DocPath: "assets/docs/b.md", Source: "assets/docs/b.md#chunk-0", Embedding: []float64{1, 1}, ChunkID: 1},
		{Text: "low similarity C", DocPath: "assets/docs/c.md", Source: "assets/docs/c.md#chunk-0", Embedding: []float64{0, 1}, ChunkID: 2},
	}
}

func TestRetriever_ScoreChunksTopK(t *testing.T) {
	emb := &staticEmbedder{vector: []float64{1, 0}}
	r := New(emb, "pod", t.TempDir(), Options{TopK: 2}, nil)

	top, err := r.ScoreChunks(context.Background(), "models/embedding-001", threeChunks())
	require.NoError(t, err)

	require.Len(t, top, 2)
	assert.Equal(t, "high similarity A", top[0].Chunk.Text)
	assert.Equal(t, "medium similarity B", top[1].Chunk.Text)
	assert.Equal(t, "models/embedding-001", emb.model)
}

func TestRetriever_ScoreChunksThreshold(t *testing.T) {
	min := 0.8
	r := New(&staticEmbedder{vector: []float64{1, 0}}, "pod", t.TempDir(), Options{TopK: 3, MinScore: &min}, nil)

	top, err := r.ScoreChunks(context.Background(), "m", threeChunks())
	require.NoError(t, err)

	require.Len(t, top, 1)
	assert.Equal(t, "high similarity A", top[0].Chunk.Text)
}

func TestRank_StableTies(t *testing.T) {
	chunks := []domain.IndexedChunk{
		{Text: "first", Embedding: []float64{1, 0}},
		{Text: "second", Embedding: []float64{2, 0}},
		{Text: "third", Embedding: []float64{3, 0}},
	}

	ranked, err := Rank([]float64{1, 0}, chunks, Options{TopK: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, []string{ranked[0].Chunk.Text, ranked[1].Chunk.Text, ranked[2].Chunk.Text})
}

func TestRank_DimensionMismatch(t *testing.T) {
	_, err := Rank([]float64{1, 0, 0}, threeChunks(), Options{TopK: 1})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRetriever_QueryEmbeddingErrorKeepsCategory(t *testing.T) {
	r := New(&staticEmbedder{err: domain.ErrLLMUnavailable}, "q", t.TempDir(), Options{TopK: 1}, nil)

	_, err := r.ScoreChunks(context.Background(), "m", threeChunks())
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestChunks(t *testing.T) {
	scored := []domain.ScoredChunk{{Chunk: domain.IndexedChunk{Text: "x"}, Score: 0.5}}
	assert.Equal(t, []domain.IndexedChunk{{Text: "x"}}, Chunks(scored))
}

package domain

import (
	"context"
	"fmt"
	"time"
)

// Document represents a single source file loaded for indexing.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a contiguous slice of one document's content, not yet embedded.
type Chunk struct {
	Text    string `json:"text"`
	DocPath string `json:"doc_path"`
}

// IndexedChunk is a chunk together with its embedding and position in the
// source document.
type IndexedChunk struct {
	Text      string    `json:"text"`
	DocPath   string    `json:"doc_path"`
	Source    string    `json:"source"`
	Embedding []float64 `json:"embedding"`
	ChunkID   int       `json:"chunk_id"`
}

// ChunkSource formats the source reference of a chunk.
func ChunkSource(docPath string, chunkID int) string {
	return fmt.Sprintf("%s#chunk-%d", docPath, chunkID)
}

// ScoredChunk is an indexed chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk IndexedChunk
	Score float64
}

// ChunkingConfig controls how document text is split into chunks.
type ChunkingConfig struct {
	ChunkSize      int    `yaml:"chunk_size" json:"chunk_size"`
	ChunkSeparator string `yaml:"chunk_separator" json:"chunk_separator"`
}

// Validate reports whether the chunking policy is usable.
func (c ChunkingConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrConfiguration, c.ChunkSize)
	}
	if c.ChunkSeparator == "" {
		return fmt.Errorf("%w: chunk_separator must not be empty", ErrConfiguration)
	}
	return nil
}

// IndexFile is one shard of a dataset's indexed chunks.
type IndexFile struct {
	Dataset        string         `json:"dataset"`
	EmbeddingModel string         `json:"embedding_model"`
	CreatedAt      time.Time      `json:"created_at"`
	IndexID        string         `json:"index_id"`
	Chunks         []IndexedChunk `json:"chunks"`
}

// ManifestIndexFile locates one shard relative to the dataset root.
type ManifestIndexFile struct {
	IndexID   string `json:"index_id"`
	Path      string `json:"path"`
	NumChunks int    `json:"num_chunks"`
}

// ManifestDocument records one source document at index time.
type ManifestDocument struct {
	DocID         string    `json:"doc_id"`
	DocPath       string    `json:"doc_path"`
	Hash          string    `json:"hash"`
	LastIndexedAt time.Time `json:"last_indexed_at"`
}

// ManifestFile is the dataset root record. Its presence marks a dataset as
// queryable.
type ManifestFile struct {
	Dataset        string              `json:"dataset"`
	EmbeddingModel string              `json:"embedding_model"`
	CreatedAt      time.Time           `json:"created_at"`
	TotalDocs      int                 `json:"total_docs"`
	TotalChunks    int                 `json:"total_chunks"`
	IndexFiles     []ManifestIndexFile `json:"index_files"`
	Documents      []ManifestDocument  `json:"documents"`
}

// IndexRequest describes a full rebuild of one dataset.
type IndexRequest struct {
	SourceDir         string
	EmbeddingModel    string
	Dataset           string
	MaxChunksPerIndex int
	Chunking          ChunkingConfig
}

// Embedder turns text into a vector. An empty model selects the client's
// default embedding model.
type Embedder interface {
	EmbedText(ctx context.Context, text, model string) ([]float64, error)
}

// Generator produces a completion for a prompt. An empty model selects the
// client's default generation model.
type Generator interface {
	GenerateResponse(ctx context.Context, prompt, model string) (string, error)
}

// LLMClient is the external language model collaborator.
type LLMClient interface {
	Embedder
	Generator
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// IndexWriter persists the output of an indexing run.
type IndexWriter interface {
	SaveIndexedChunks(chunks []IndexedChunk, documents []ManifestDocument) error
}

// VectorStore indexes datasets and answers similarity queries against them.
type VectorStore interface {
	IndexDataset(ctx context.Context, req IndexRequest) (docCount, chunkCount int, err error)
	Query(ctx context.Context, dataset, queryText string, topK int) ([]IndexedChunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// RAGService defines the operations exposed by the application core.
type RAGService interface {
	IndexDataset(ctx context.Context, req IndexRequest) (docCount, chunkCount int, err error)
	AnswerQuestion(ctx context.Context, query string, topK int) (answer string, chunks []IndexedChunk, err error)
}

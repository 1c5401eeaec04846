package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"docrag/internal/domain"
)

// DefaultExtensions lists the document extensions indexed when none are
// configured.
var DefaultExtensions = []string{".md"}

// Config describes one indexing run.
type Config struct {
	SourceDir      string
	EmbeddingModel string
	// Extensions selects documents by file extension, including the dot.
	Extensions []string
}

// Indexer chunks, embeds and persists a document corpus.
type Indexer struct {
	cfg     Config
	chunker domain.Chunker
	writer  domain.IndexWriter
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an indexer that hands its output to writer.
func New(cfg Config, chunker domain.Chunker, writer domain.IndexWriter, logger *slog.Logger) *Indexer {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		cfg:     cfg,
		chunker: chunker,
		writer:  writer,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run indexes every document under the source directory and returns the
// number of documents and chunks written. Nothing is written when reading or
// embedding fails.
func (ix *Indexer) Run(ctx context.Context, client domain.Embedder) (docCount, chunkCount int, err error) {
	docs, err := ix.LoadDocs()
	if err != nil {
		return 0, 0, err
	}
	chunks, documents, err := ix.BuildIndex(ctx, client, docs)
	if err != nil {
		return 0, 0, err
	}
	if err := ix.writer.SaveIndexedChunks(chunks, documents); err != nil {
		return 0, 0, err
	}
	return len(docs), len(chunks), nil
}

// LoadDocs returns the paths of all matching documents below the source
// directory, sorted.
func (ix *Indexer) LoadDocs() ([]string, error) {
	info, err := os.Stat(ix.cfg.SourceDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: directory %s does not exist", domain.ErrConfiguration, ix.cfg.SourceDir)
	}
	var docs []string
	err = filepath.WalkDir(ix.cfg.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !ix.matches(path) {
			return nil
		}
		docs = append(docs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", domain.ErrConfiguration, ix.cfg.SourceDir, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no %s files found in directory %s", domain.ErrConfiguration, strings.Join(ix.cfg.Extensions, "/"), ix.cfg.SourceDir)
	}
	sort.Strings(docs)
	return docs, nil
}

func (ix *Indexer) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ix.cfg.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// BuildIndex reads, chunks and embeds every document in order.
func (ix *Indexer) BuildIndex(ctx context.Context, client domain.Embedder, docs []string) ([]domain.IndexedChunk, []domain.ManifestDocument, error) {
	var indexed []domain.IndexedChunk
	documents := make([]domain.ManifestDocument, 0, len(docs))
	dim := 0
	for _, path := range docs {
		content, err := readDocument(path)
		if err != nil {
			return nil, nil, err
		}
		docPath := ix.relativePath(path)
		chunks, err := ix.chunker.Chunk(domain.Document{ID: filepath.Base(path), Path: docPath, Content: content})
		if err != nil {
			return nil, nil, fmt.Errorf("chunk %s: %w", docPath, err)
		}
		for chunkID, chunk := range chunks {
			embedding, err := client.EmbedText(ctx, chunk.Text, ix.cfg.EmbeddingModel)
			if err != nil {
				return nil, nil, fmt.Errorf("embed %s: %w", domain.ChunkSource(docPath, chunkID), err)
			}
			if dim == 0 {
				dim = len(embedding)
			} else if len(embedding) != dim {
				return nil, nil, fmt.Errorf("%w: %s has %d dimensions, expected %d",
					domain.ErrDimensionMismatch, domain.ChunkSource(docPath, chunkID), len(embedding), dim)
			}
			indexed = append(indexed, domain.IndexedChunk{
				Text:      chunk.Text,
				DocPath:   chunk.DocPath,
				Source:    domain.ChunkSource(docPath, chunkID),
				Embedding: embedding,
				ChunkID:   chunkID,
			})
		}
		documents = append(documents, domain.ManifestDocument{
			DocID:         filepath.Base(path),
			DocPath:       docPath,
			Hash:          hashContent(content),
			LastIndexedAt: ix.now(),
		})
		ix.logger.Debug("indexed document", "doc_path", docPath, "chunks", len(chunks))
	}
	return indexed, documents, nil
}

// relativePath expresses a document path relative to the source directory,
// with forward slashes so sources are stable across platforms.
func (ix *Indexer) relativePath(path string) string {
	rel, err := filepath.Rel(ix.cfg.SourceDir, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: file %s not found", domain.ErrDocumentRead, path)
		}
		return "", fmt.Errorf("%w: %s: %v", domain.ErrDocumentRead, path, err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("%w: file %s is empty", domain.ErrDocumentRead, path)
	}
	return content, nil
}

func hashContent(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

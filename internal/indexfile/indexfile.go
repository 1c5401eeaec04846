// Package indexfile implements the on-disk dataset format: one manifest.json
// per dataset plus numbered index-NNNN.json shards, all under
// <dest>/indexes/<dataset>/.
package indexfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"docrag/internal/domain"
)

const (
	// ManifestName is the file name of a dataset manifest.
	ManifestName = "manifest.json"

	indexesDir = "indexes"
)

// DatasetDir returns the root directory of a dataset under dest.
func DatasetDir(dest, dataset string) string {
	return filepath.Join(dest, indexesDir, dataset)
}

// ShardID returns the deterministic id of the n-th shard.
func ShardID(n int) string {
	return fmt.Sprintf("index-%04d", n)
}

// ShardFileName returns the file name of the n-th shard.
func ShardFileName(n int) string {
	return ShardID(n) + ".json"
}

// ReadManifest loads and validates the manifest of the dataset rooted at dir.
// A missing or empty manifest yields domain.ErrNotIndexed; anything that does
// not decode into a complete manifest yields domain.ErrCorruptIndex.
func ReadManifest(dir string) (*domain.ManifestFile, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found, run the index command first", domain.ErrNotIndexed, path)
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty, run the index command first", domain.ErrNotIndexed, path)
	}
	var m domain.ManifestFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s is not valid JSON: %v", domain.ErrCorruptIndex, path, err)
	}
	if err := validateManifest(&m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptIndex, path, err)
	}
	return &m, nil
}

func validateManifest(m *domain.ManifestFile) error {
	if m.EmbeddingModel == "" {
		return errors.New("embedding_model missing")
	}
	if m.IndexFiles == nil {
		return errors.New("index_files missing")
	}
	total := 0
	for i, f := range m.IndexFiles {
		if f.Path == "" {
			return fmt.Errorf("index_files[%d]: path missing", i)
		}
		if filepath.IsAbs(f.Path) {
			return fmt.Errorf("index_files[%d]: path %q must be relative to the dataset root", i, f.Path)
		}
		total += f.NumChunks
	}
	if total != m.TotalChunks {
		return fmt.Errorf("total_chunks is %d but shards hold %d", m.TotalChunks, total)
	}
	return nil
}

// ReadIndexFile loads one shard. A missing or malformed shard referenced by a
// manifest means the dataset is corrupt.
func ReadIndexFile(dir string, entry domain.ManifestIndexFile) (*domain.IndexFile, error) {
	path := filepath.Join(dir, entry.Path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: shard %s referenced by manifest is missing", domain.ErrCorruptIndex, path)
		}
		return nil, fmt.Errorf("read shard %s: %w", path, err)
	}
	var f domain.IndexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: shard %s is not valid JSON: %v", domain.ErrCorruptIndex, path, err)
	}
	if f.Chunks == nil {
		return nil, fmt.Errorf("%w: shard %s: chunks missing", domain.ErrCorruptIndex, path)
	}
	for i, c := range f.Chunks {
		if c.Source == "" || len(c.Embedding) == 0 {
			return nil, fmt.Errorf("%w: shard %s: chunk %d missing source or embedding", domain.ErrCorruptIndex, path, i)
		}
	}
	return &f, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

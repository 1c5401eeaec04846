package vectorstore

import (
	"context"
	"fmt"
	"regexp"

	"docrag/internal/domain"
)

// Storage persists embedded chunks per dataset and supports similarity search.
type Storage interface {
	// Reset drops whatever the dataset held and prepares it for vectors of
	// the given dimension embedded with embeddingModel.
	Reset(ctx context.Context, dataset string, dimension int, embeddingModel string) error
	Upsert(ctx context.Context, dataset string, chunks []domain.IndexedChunk) error
	Search(ctx context.Context, dataset string, vector []float64, topK int) ([]domain.ScoredChunk, error)
	// EmbeddingModel returns the model the dataset was indexed with, or
	// domain.ErrNotIndexed.
	EmbeddingModel(ctx context.Context, dataset string) (string, error)
}

var datasetNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDatasetName rejects names that cannot be used as a directory or
// collection name.
func ValidateDatasetName(name string) error {
	if !datasetNameRe.MatchString(name) {
		return fmt.Errorf("%w: invalid dataset name %q", domain.ErrConfiguration, name)
	}
	return nil
}

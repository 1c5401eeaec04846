package chunker

import "docrag/internal/domain"

// Factory builds the chunker used for one indexing request.
type Factory func(cfg domain.ChunkingConfig) (domain.Chunker, error)

// SeparatorFactory builds separator chunkers from the request's policy.
func SeparatorFactory(cfg domain.ChunkingConfig) (domain.Chunker, error) {
	c, err := NewSeparatorChunker(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SentenceFactory builds sentence-window chunkers. The request's chunk size
// and separator do not apply to them.
func SentenceFactory(sentencesPerChunk, overlapSentences int) Factory {
	return func(domain.ChunkingConfig) (domain.Chunker, error) {
		return NewSentenceChunker(sentencesPerChunk, overlapSentences), nil
	}
}

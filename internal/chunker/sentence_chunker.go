package chunker

import (
	"strings"

	"docrag/internal/domain"
	"docrag/internal/textproc"
)

// SentenceChunker groups consecutive sentences into fixed-size windows that
// share overlap sentences with their predecessor.
type SentenceChunker struct {
	window  int
	overlap int
}

// NewSentenceChunker clamps its arguments: a non-positive window becomes 5 and
// overlap stays within [0, window-1].
func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	overlapSentences = max(0, min(overlapSentences, sentencesPerChunk-1))
	return &SentenceChunker{window: sentencesPerChunk, overlap: overlapSentences}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	sentences := textproc.SentencesWithTail(document.Content)
	if len(sentences) == 0 {
		return nil, nil
	}
	var chunks []domain.Chunk
	for start := 0; ; start += c.window - c.overlap {
		end := min(start+c.window, len(sentences))
		chunks = append(chunks, domain.Chunk{
			Text:    strings.Join(sentences[start:end], " "),
			DocPath: document.Path,
		})
		if end == len(sentences) {
			return chunks, nil
		}
	}
}

package chunker

import (
	"strings"
	"unicode/utf8"

	"docrag/internal/domain"
)

// SeparatorChunker packs separator-delimited segments into chunks bounded by
// a maximum length.
type SeparatorChunker struct {
	config domain.ChunkingConfig
}

// NewSeparatorChunker creates a chunker for the given policy.
func NewSeparatorChunker(config domain.ChunkingConfig) (*SeparatorChunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SeparatorChunker{config: config}, nil
}

// Chunk splits the document content using the configured policy.
func (c *SeparatorChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	return Chunk(document.Content, document.Path, c.config), nil
}

type segment struct {
	text string
	// terminated is true when the separator followed this segment in the source.
	terminated bool
}

// Chunk greedily packs consecutive segments of content into chunks whose
// trimmed length, in runes, stays at or below config.ChunkSize. Segments are
// never split; a segment longer than ChunkSize becomes a chunk of its own.
func Chunk(content, docPath string, config domain.ChunkingConfig) []domain.Chunk {
	segments := splitSegments(content, config.ChunkSeparator)
	if len(segments) == 0 {
		return nil
	}
	var chunks []domain.Chunk
	var current []segment
	for _, seg := range segments {
		if len(current) > 0 {
			candidate := render(append(current[:len(current):len(current)], seg), config.ChunkSeparator)
			if utf8.RuneCountInString(candidate) > config.ChunkSize {
				chunks = append(chunks, domain.Chunk{Text: render(current, config.ChunkSeparator), DocPath: docPath})
				current = current[:0:0]
			}
		}
		current = append(current, seg)
	}
	chunks = append(chunks, domain.Chunk{Text: render(current, config.ChunkSeparator), DocPath: docPath})
	return chunks
}

func splitSegments(content, sep string) []segment {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	parts := strings.Split(content, sep)
	segments := make([]segment, 0, len(parts))
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		segments = append(segments, segment{text: p, terminated: i < len(parts)-1})
	}
	return segments
}

func render(segments []segment, sep string) string {
	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s.text)
	}
	if segments[len(segments)-1].terminated {
		b.WriteString(sep)
	}
	return strings.TrimSpace(b.String())
}

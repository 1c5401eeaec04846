package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

const sampleText = "This is a sample document. It has several sentences. We will chunk it."

func TestChunk_FitsInOneChunk(t *testing.T) {
	chunks := Chunk(sampleText, "assets/docs/kubernetes_intro.md", domain.ChunkingConfig{ChunkSize: 70, ChunkSeparator: ". "})

	require.Len(t, chunks, 1)
	assert.Equal(t, sampleText, chunks[0].Text)
	assert.Equal(t, "assets/docs/kubernetes_intro.md", chunks[0].DocPath)
}

func TestChunk_SplitsOnSeparatorBeforeLimit(t *testing.T) {
	chunks := Chunk(sampleText, "assets/docs/kubernetes_intro.md", domain.ChunkingConfig{ChunkSize: 65, ChunkSeparator: ". "})

	require.Len(t, chunks, 2)
	assert.Equal(t, "This is a sample document. It has several sentences.", chunks[0].Text)
	assert.Equal(t, "We will chunk it.", chunks[1].Text)
}

func TestChunk_EmptyContent(t *testing.T) {
	assert.Empty(t, Chunk("", "assets/docs/whatever.md", domain.ChunkingConfig{ChunkSize: 10, ChunkSeparator: "\n\n"}))
	assert.Empty(t, Chunk(" \n\t ", "assets/docs/whatever.md", domain.ChunkingConfig{ChunkSize: 10, ChunkSeparator: "\n\n"}))
}

func TestChunk_NoSeparatorShortInput(t *testing.T) {
	chunks := Chunk("  a short note  ", "n.md", domain.ChunkingConfig{ChunkSize: 100, ChunkSeparator: "\n\n"})

	require.Len(t, chunks, 1)
	assert.Equal(t, "a short note", chunks[0].Text)
}

func TestChunk_OversizeSegmentIsKept(t *testing.T) {
	long := strings.Repeat("x", 40)
	content := "short\n\n" + long + "\n\ntail"

	chunks := Chunk(content, "d.md", domain.ChunkingConfig{ChunkSize: 10, ChunkSeparator: "\n\n"})

	require.Len(t, chunks, 3)
	assert.Equal(t, "short", chunks[0].Text)
	assert.Equal(t, long, chunks[1].Text)
	assert.Equal(t, "tail", chunks[2].Text)
}

func TestChunk_DiscardsBlankSegments(t *testing.T) {
	content := "alpha\n\n\n\n   \n\nbeta"

	chunks := Chunk(content, "d.md", domain.ChunkingConfig{ChunkSize: 100, ChunkSeparator: "\n\n"})

	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha\n\nbeta", chunks[0].Text)
}

func TestChunk_CountsRunes(t *testing.T) {
	// Each segment is 4 runes but 8 bytes.
	content := "ääää|öööö"

	chunks := Chunk(content, "u.md", domain.ChunkingConfig{ChunkSize: 9, ChunkSeparator: "|"})

	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0].Text)
}

func TestSeparatorChunker_RejectsInvalidConfig(t *testing.T) {
	_, err := NewSeparatorChunker(domain.ChunkingConfig{ChunkSize: 0, ChunkSeparator: "."})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSeparatorChunker_Chunk(t *testing.T) {
	c, err := NewSeparatorChunker(domain.ChunkingConfig{ChunkSize: 65, ChunkSeparator: ". "})
	require.NoError(t, err)

	chunks, err := c.Chunk(domain.Document{Path: "docs/a.md", Content: sampleText})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "docs/a.md", chunks[1].DocPath)
}

func TestSentenceChunker_Overlap(t *testing.T) {
	c := NewSentenceChunker(2, 1)

	chunks, err := c.Chunk(domain.Document{Path: "s.md", Content: "One. Two. Three."})
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "One. Two.", chunks[0].Text)
	assert.Equal(t, "Two. Three.", chunks[1].Text)
}

func TestSentenceChunker_Empty(t *testing.T) {
	chunks, err := NewSentenceChunker(3, 0).Chunk(domain.Document{Path: "s.md", Content: "   "})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSeparatorFactory_InvalidConfigReturnsNilChunker(t *testing.T) {
	c, err := SeparatorFactory(domain.ChunkingConfig{ChunkSize: 0, ChunkSeparator: "\n\n"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Nil(t, c)
}

func TestSentenceFactory_IgnoresSeparatorPolicy(t *testing.T) {
	c, err := SentenceFactory(1, 0)(domain.ChunkingConfig{})
	require.NoError(t, err)

	chunks, err := c.Chunk(domain.Document{Path: "s.md", Content: "One. Two."})
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestSentenceChunker_KeepsUnterminatedTail(t *testing.T) {
	chunks, err := NewSentenceChunker(2, 0).Chunk(domain.Document{Path: "s.md", Content: "Pods run containers. Nodes host pods. Trailing note"})
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "Pods run containers. Nodes host pods.", chunks[0].Text)
	assert.Equal(t, "Trailing note", chunks[1].Text)
}

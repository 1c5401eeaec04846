package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func TestBuild(t *testing.T) {
	chunks := []domain.IndexedChunk{
		{Text: "Pods are the smallest unit.", Source: "k8s.md#chunk-0", ChunkID: 0},
		{Text: "Services expose pods.", Source: "k8s.md#chunk-3", ChunkID: 3},
	}

	got := Build("What is a pod?", chunks)

	want := "You are a helpful assistant. Use ONLY the context below to answer the question.\n\n" +
		"Context:\n" +
		"Source: k8s.md#chunk-0 (chunk 0)\nPods are the smallest unit.\n\n" +
		"Source: k8s.md#chunk-3 (chunk 3)\nServices expose pods.\n\n" +
		"Question: What is a pod?\nAnswer:"
	assert.Equal(t, want, got)
}

func TestParse_RoundTrip(t *testing.T) {
	chunks := []domain.IndexedChunk{
		{Text: "Pods are the smallest unit.", Source: "k8s.md#chunk-0"},
		{Text: "Services expose pods.", Source: "k8s.md#chunk-1", ChunkID: 1},
	}

	passages, question, ok := Parse(Build("What is a pod?", chunks))
	require.True(t, ok)
	assert.Equal(t, []string{"Pods are the smallest unit.", "Services expose pods."}, passages)
	assert.Equal(t, "What is a pod?", question)
}

func TestParse_Foreign(t *testing.T) {
	_, _, ok := Parse("just a question")
	assert.False(t, ok)
}

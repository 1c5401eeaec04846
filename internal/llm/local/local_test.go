package local

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
	"docrag/internal/prompt"
	"docrag/internal/retriever"
)

func TestEmbedText_UnitLengthAndDeterministic(t *testing.T) {
	c := NewClient(64, 0)

	a, err := c.EmbedText(context.Background(), "Kubernetes pods run containers", "")
	require.NoError(t, err)
	b, err := c.EmbedText(context.Background(), "kubernetes PODS run containers", "any-model")
	require.NoError(t, err)

	require.Len(t, a, 64)
	assert.Equal(t, a, b)
	norm := 0.0
	for _, v := range a {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestEmbedText_StopwordsOnlyIsZero(t *testing.T) {
	v, err := NewClient(0, 0).EmbedText(context.Background(), "the and of", "")
	require.NoError(t, err)
	assert.Len(t, v, DefaultDimension)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestEmbedText_SimilarTextScoresHigher(t *testing.T) {
	c := NewClient(0, 0)
	ctx := context.Background()
	q, _ := c.EmbedText(ctx, "how do pods restart", "")
	near, _ := c.EmbedText(ctx, "Kubernetes restarts failed pods automatically.", "")
	far, _ := c.EmbedText(ctx, "Redis keeps keys in memory.", "")

	sNear, err := retriever.CosineSimilarity(q, near)
	require.NoError(t, err)
	sFar, err := retriever.CosineSimilarity(q, far)
	require.NoError(t, err)
	assert.Greater(t, sNear, sFar)
}

func TestGenerateResponse_AnswersFromContext(t *testing.T) {
	p := prompt.Build("What is the weather like?", []domain.IndexedChunk{
		{Text: "Kubernetes schedules pods onto nodes. Pods wrap containers.", Source: "a.md#chunk-0"},
		{Text: "The weather was nice. Kubernetes restarts failed pods.", Source: "b.md#chunk-0", ChunkID: 0},
	})

	answer, err := NewClient(0, 1).GenerateResponse(context.Background(), p, "")
	require.NoError(t, err)
	assert.Equal(t, "The weather was nice.", answer)
	assert.NotContains(t, answer, "Source:")
}

func TestGenerateResponse_ForeignPrompt(t *testing.T) {
	answer, err := NewClient(0, 5).GenerateResponse(context.Background(), "Say hi. Then stop.", "")
	require.NoError(t, err)
	assert.Equal(t, "Say hi. Then stop.", answer)
}

func TestClient_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(0, 0).EmbedText(ctx, "x", "")
	assert.ErrorIs(t, err, context.Canceled)
}

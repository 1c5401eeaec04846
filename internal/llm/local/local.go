// Package local provides an offline LLM client: a feature-hashing embedder
// and an extractive generator that answers from the prompt's own context.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"docrag/internal/domain"
	"docrag/internal/prompt"
	"docrag/internal/summarizer"
	"docrag/internal/textproc"
)

// DefaultDimension is the vector size used when none is configured.
const DefaultDimension = 256

// Client implements domain.LLMClient without any network access.
type Client struct {
	dimension    int
	maxSentences int
	summarizer   *summarizer.FrequencySummarizer
}

var _ domain.LLMClient = (*Client)(nil)

// NewClient creates an offline client. Non-positive arguments select defaults.
func NewClient(dimension, maxSentences int) *Client {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &Client{dimension: dimension, maxSentences: maxSentences, summarizer: summarizer.NewFrequencySummarizer()}
}

// EmbedText hashes each non-stopword term into a fixed number of buckets,
// weights bucket counts sublinearly and L2-normalizes the result. Text with
// no terms embeds to the zero vector. The model argument is ignored.
func (c *Client) EmbedText(ctx context.Context, text, _ string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, c.dimension)
	counts := make(map[int]int)
	for _, tok := range textproc.Terms(text) {
		counts[c.bucket(tok)]++
	}
	for idx, n := range counts {
		vec[idx] = 1 + math.Log(float64(n))
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (c *Client) bucket(tok string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tok))
	return int(h.Sum32() % uint32(c.dimension))
}

// GenerateResponse extracts the context sentences most related to the
// question. Prompts not built by prompt.Build are summarized whole.
func (c *Client) GenerateResponse(ctx context.Context, p, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	passages, question, ok := prompt.Parse(p)
	if !ok {
		return c.summarizer.Summarize(p, c.maxSentences)
	}
	return c.summarizer.WithBias(question).Summarize(strings.Join(passages, " "), c.maxSentences)
}

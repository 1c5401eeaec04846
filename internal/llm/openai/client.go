package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"docrag/internal/domain"
)

// Config configures the OpenAI-compatible client.
type Config struct {
	BaseURL        string
	APIKeyEnv      string
	EmbeddingModel string
	ChatModel      string
	Temperature    float32
	Timeout        time.Duration
}

// Client implements domain.LLMClient against any OpenAI-compatible endpoint.
type Client struct {
	client         *openai.Client
	embeddingModel string
	chatModel      string
	temperature    float32
}

var _ domain.LLMClient = (*Client)(nil)

// NewClient creates a client using the API key found in cfg.APIKeyEnv.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: missing API key in env %s", domain.ErrConfiguration, cfg.APIKeyEnv)
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = string(openai.SmallEmbedding3)
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4oMini
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	oc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: t}
	return &Client{
		client:         openai.NewClientWithConfig(oc),
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		temperature:    cfg.Temperature,
	}, nil
}

// EmbedText returns an embedding vector for text. An empty model selects the
// configured embedding model.
func (c *Client) EmbedText(ctx context.Context, text, model string) ([]float64, error) {
	if model == "" {
		model = c.embeddingModel
	}
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(model),
		Input: []string{text},
	})
	if err != nil {
		return nil, categorize(err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrLLM)
	}
	v32 := resp.Data[0].Embedding
	v := make([]float64, len(v32))
	for i := range v32 {
		v[i] = float64(v32[i])
	}
	return v, nil
}

// GenerateResponse sends prompt as a single user message.
func (c *Client) GenerateResponse(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = c.chatModel
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", categorize(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrLLM)
	}
	return resp.Choices[0].Message.Content, nil
}

// categorize maps SDK and transport failures onto the domain LLM errors,
// keeping the original error in the chain.
func categorize(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == 0 {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrLLM, err)
	}
	return fmt.Errorf("%w: %w", categoryForStatus(status), err)
}

func categoryForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrLLMAuthentication
	case status == http.StatusTooManyRequests:
		return domain.ErrLLMRateLimit
	case status == http.StatusBadRequest || status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		return domain.ErrLLMInvalidRequest
	case status >= 500:
		return domain.ErrLLMUnavailable
	default:
		return domain.ErrLLM
	}
}

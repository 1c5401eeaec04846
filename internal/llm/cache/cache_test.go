package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

// MockLLMClient is a mock implementation of domain.LLMClient
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) EmbedText(ctx context.Context, text, model string) ([]float64, error) {
	args := m.Called(ctx, text, model)
	if v := args.Get(0); v != nil {
		return v.([]float64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLLMClient) GenerateResponse(ctx context.Context, prompt, model string) (string, error) {
	args := m.Called(ctx, prompt, model)
	return args.String(0), args.Error(1)
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestCachedClient_SecondCallHitsCache(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	next := new(MockLLMClient)
	next.On("EmbedText", mock.Anything, "hello", "m").Return([]float64{0.1, 0.2}, nil).Once()
	c := New(next, rdb, time.Hour, nil)
	ctx := context.Background()

	first, err := c.EmbedText(ctx, "hello", "m")
	require.NoError(t, err)
	second, err := c.EmbedText(ctx, "hello", "m")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	next.AssertExpectations(t)
	hits, misses := c.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)
	assert.True(t, mr.Exists(Key("m", "hello")))
	assert.Equal(t, time.Hour, mr.TTL(Key("m", "hello")))
}

func TestCachedClient_KeyIncludesModel(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	next := new(MockLLMClient)
	next.On("EmbedText", mock.Anything, "hello", "a").Return([]float64{1}, nil).Once()
	next.On("EmbedText", mock.Anything, "hello", "b").Return([]float64{2}, nil).Once()
	c := New(next, rdb, 0, nil)

	va, err := c.EmbedText(context.Background(), "hello", "a")
	require.NoError(t, err)
	vb, err := c.EmbedText(context.Background(), "hello", "b")
	require.NoError(t, err)

	assert.NotEqual(t, va, vb)
	assert.NotEqual(t, Key("a", "hello"), Key("b", "hello"))
	next.AssertExpectations(t)
}

func TestCachedClient_ErrorsAreNotCached(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	next := new(MockLLMClient)
	next.On("EmbedText", mock.Anything, "x", "m").Return(nil, domain.ErrLLMRateLimit).Once()
	c := New(next, rdb, time.Minute, nil)

	_, err := c.EmbedText(context.Background(), "x", "m")
	assert.ErrorIs(t, err, domain.ErrLLMRateLimit)
	assert.False(t, mr.Exists(Key("m", "x")))
}

func TestCachedClient_RedisDownFallsThrough(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	mr.Close()
	next := new(MockLLMClient)
	next.On("EmbedText", mock.Anything, "x", "m").Return([]float64{3}, nil)
	c := New(next, rdb, time.Minute, nil)

	v, err := c.EmbedText(context.Background(), "x", "m")
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, v)
}

func TestCachedClient_CorruptEntryIsReplaced(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(Key("m", "x"), "not json"))
	next := new(MockLLMClient)
	next.On("EmbedText", mock.Anything, "x", "m").Return([]float64{4}, nil).Once()
	c := New(next, rdb, 0, nil)

	v, err := c.EmbedText(context.Background(), "x", "m")
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, v)
	got, err := mr.Get(Key("m", "x"))
	require.NoError(t, err)
	assert.Equal(t, "[4]", got)
}

func TestCachedClient_GeneratePassesThrough(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	next := new(MockLLMClient)
	next.On("GenerateResponse", mock.Anything, "p", "").Return("answer", nil)
	c := New(next, rdb, 0, nil)

	got, err := c.GenerateResponse(context.Background(), "p", "")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"docrag/internal/domain"
	"docrag/internal/logging"
)

// OpenAIConfig holds configuration for the OpenAI-compatible provider.
type OpenAIConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	EmbeddingModel string  `yaml:"embedding_model"`
	ChatModel      string  `yaml:"chat_model"`
	Temperature    float32 `yaml:"temperature"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
}

// LocalConfig configures the offline provider.
type LocalConfig struct {
	Dimension    int `yaml:"dimension"`
	MaxSentences int `yaml:"max_sentences"`
}

// LLMConfig selects and configures the language model provider.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	OpenAI   *OpenAIConfig `yaml:"openai,omitempty"`
	Local    LocalConfig   `yaml:"local"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	ChunkSize         int    `yaml:"chunk_size"`
	ChunkSeparator    string `yaml:"chunk_separator"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

// Chunking returns the separator policy of c.
func (c ChunkerConfig) Chunking() domain.ChunkingConfig {
	return domain.ChunkingConfig{ChunkSize: c.ChunkSize, ChunkSeparator: c.ChunkSeparator}
}

// IndexConfig describes where documents come from and where indexes go.
type IndexConfig struct {
	SourceDir         string   `yaml:"source_dir"`
	DestinationDir    string   `yaml:"destination_dir"`
	Dataset           string   `yaml:"dataset"`
	EmbeddingModel    string   `yaml:"embedding_model"`
	MaxChunksPerIndex int      `yaml:"max_chunks_per_index"`
	Extensions        []string `yaml:"extensions"`
}

// VectorStoreConfig selects and configures the dataset backend.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL              string `yaml:"url"`
	APIKey           string `yaml:"api_key"`
	CollectionPrefix string `yaml:"collection_prefix"`
	TimeoutSecs      int    `yaml:"timeout_secs"`
	BatchSize        int    `yaml:"batch_size"`
}

// RetrievalConfig tunes query-time ranking.
type RetrievalConfig struct {
	TopK     int      `yaml:"top_k"`
	MinScore *float64 `yaml:"min_score,omitempty"`
}

// CacheConfig enables the Redis embedding cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLSecs  int    `yaml:"ttl_secs"`
}

// TTL returns the entry lifetime; zero keeps entries until evicted.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSecs) * time.Second }

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr                string `yaml:"addr"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LLM         LLMConfig         `yaml:"llm"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Index       IndexConfig       `yaml:"index"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Cache       CacheConfig       `yaml:"cache"`
	Server      ServerConfig      `yaml:"server"`
	Log         logging.Config    `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/docrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "local"
	}
	if cfg.LLM.Provider == "openai" {
		if cfg.LLM.OpenAI == nil {
			cfg.LLM.OpenAI = &OpenAIConfig{}
		}
		if cfg.LLM.OpenAI.APIKeyEnv == "" {
			cfg.LLM.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.LLM.OpenAI.EmbeddingModel == "" {
			cfg.LLM.OpenAI.EmbeddingModel = "text-embedding-3-small"
		}
		if cfg.LLM.OpenAI.ChatModel == "" {
			cfg.LLM.OpenAI.ChatModel = "gpt-4o-mini"
		}
		if cfg.LLM.OpenAI.TimeoutSecs == 0 {
			cfg.LLM.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.LLM.Local.Dimension == 0 {
		cfg.LLM.Local.Dimension = 256
	}
	if cfg.LLM.Local.MaxSentences == 0 {
		cfg.LLM.Local.MaxSentences = 3
	}

	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "separator"
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 500
	}
	if cfg.Chunker.ChunkSeparator == "" {
		cfg.Chunker.ChunkSeparator = "\n\n"
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}

	if cfg.Index.SourceDir == "" {
		cfg.Index.SourceDir = filepath.Join("assets", "docs")
	}
	if cfg.Index.DestinationDir == "" {
		cfg.Index.DestinationDir = "dest"
	}
	if cfg.Index.Dataset == "" {
		cfg.Index.Dataset = "default"
	}
	if cfg.Index.EmbeddingModel == "" {
		cfg.Index.EmbeddingModel = cfg.defaultEmbeddingModel()
	}
	if cfg.Index.MaxChunksPerIndex == 0 {
		cfg.Index.MaxChunksPerIndex = 100
	}
	if len(cfg.Index.Extensions) == 0 {
		cfg.Index.Extensions = []string{".md"}
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "file"
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.URL == "" {
			cfg.VectorStore.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.VectorStore.Qdrant.CollectionPrefix == "" {
			cfg.VectorStore.Qdrant.CollectionPrefix = "docrag_"
		}
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = "localhost:6379"
	}
	if cfg.Cache.TTLSecs == 0 {
		cfg.Cache.TTLSecs = int((7 * 24 * time.Hour).Seconds())
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.ShutdownTimeoutSecs == 0 {
		cfg.Server.ShutdownTimeoutSecs = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func (cfg *AppConfig) defaultEmbeddingModel() string {
	if cfg.LLM.Provider == "openai" && cfg.LLM.OpenAI != nil {
		return cfg.LLM.OpenAI.EmbeddingModel
	}
	return "local-hash"
}

// Validate reports the first setting that cannot work.
func (cfg *AppConfig) Validate() error {
	switch cfg.LLM.Provider {
	case "local", "openai":
	default:
		return fmt.Errorf("%w: unknown llm provider %q", domain.ErrConfiguration, cfg.LLM.Provider)
	}
	switch cfg.Chunker.Type {
	case "separator":
		if err := cfg.Chunker.Chunking().Validate(); err != nil {
			return err
		}
	case "sentence":
		if cfg.Chunker.SentencesPerChunk <= 0 {
			return fmt.Errorf("%w: sentences_per_chunk must be positive", domain.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown chunker %q", domain.ErrConfiguration, cfg.Chunker.Type)
	}
	if cfg.Index.MaxChunksPerIndex <= 0 {
		return fmt.Errorf("%w: max_chunks_per_index must be positive, got %d", domain.ErrConfiguration, cfg.Index.MaxChunksPerIndex)
	}
	switch cfg.VectorStore.Type {
	case "file", "memory", "qdrant":
	default:
		return fmt.Errorf("%w: unknown vector store %q", domain.ErrConfiguration, cfg.VectorStore.Type)
	}
	if cfg.Retrieval.TopK < 1 || cfg.Retrieval.TopK > 10 {
		return fmt.Errorf("%w: retrieval.top_k must be between 1 and 10, got %d", domain.ErrConfiguration, cfg.Retrieval.TopK)
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

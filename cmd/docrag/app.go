package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"docrag/internal/chunker"
	"docrag/internal/config"
	"docrag/internal/domain"
	"docrag/internal/llm/cache"
	"docrag/internal/llm/local"
	"docrag/internal/llm/openai"
	"docrag/internal/logging"
	"docrag/internal/service"
	"docrag/internal/vectorstore"
	"docrag/internal/vectorstore/filestore"
	"docrag/internal/vectorstore/memory"
	"docrag/internal/vectorstore/qdrant"
)

// app holds the components assembled from one configuration.
type app struct {
	cfg     *config.AppConfig
	logger  *slog.Logger
	llm     domain.LLMClient
	cache   *cache.CachedClient
	service *service.RAGServiceImpl
}

func loadConfig(path string) (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if path == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires the LLM client, the dataset backend and the service. cfg must
// already carry any flag overrides.
func newApp(cfg *config.AppConfig) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	var chatModel string
	switch cfg.LLM.Provider {
	case "openai":
		oc := cfg.LLM.OpenAI
		if oc == nil {
			oc = &config.OpenAIConfig{}
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:        oc.BaseURL,
			APIKeyEnv:      oc.APIKeyEnv,
			EmbeddingModel: oc.EmbeddingModel,
			ChatModel:      oc.ChatModel,
			Temperature:    oc.Temperature,
			Timeout:        time.Duration(oc.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		a.llm = client
		chatModel = oc.ChatModel
	default:
		a.llm = local.NewClient(cfg.LLM.Local.Dimension, cfg.LLM.Local.MaxSentences)
	}

	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		a.cache = cache.New(a.llm, rdb, cfg.Cache.TTL(), logger)
		a.llm = a.cache
	}

	store, err := newStore(cfg, a.llm, logger)
	if err != nil {
		return nil, err
	}
	a.service = service.NewRAGService(store, a.llm, cfg.Index.Dataset, chatModel, logger)
	return a, nil
}

func newStore(cfg *config.AppConfig, client domain.Embedder, logger *slog.Logger) (domain.VectorStore, error) {
	var chunkers chunker.Factory = chunker.SeparatorFactory
	if cfg.Chunker.Type == "sentence" {
		chunkers = chunker.SentenceFactory(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	}
	opts := vectorstore.Options{
		Chunkers:   chunkers,
		Extensions: cfg.Index.Extensions,
		MinScore:   cfg.Retrieval.MinScore,
		Logger:     logger,
	}
	switch cfg.VectorStore.Type {
	case "file":
		return filestore.New(cfg.Index.DestinationDir, client, filestore.Options{
			Chunkers:   opts.Chunkers,
			Extensions: opts.Extensions,
			MinScore:   opts.MinScore,
			Logger:     logger,
		}), nil
	case "memory":
		return vectorstore.New(memory.NewStorage(), client, opts), nil
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		if q == nil {
			return nil, fmt.Errorf("%w: qdrant config missing", domain.ErrConfiguration)
		}
		st := qdrant.NewStorage(qdrant.Config{
			URL:              q.URL,
			APIKey:           q.APIKey,
			CollectionPrefix: q.CollectionPrefix,
			Timeout:          time.Duration(q.TimeoutSecs) * time.Second,
			BatchSize:        q.BatchSize,
		})
		return vectorstore.New(st, client, opts), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector store %q", domain.ErrConfiguration, cfg.VectorStore.Type)
	}
}

// indexRequest describes a full rebuild of the configured dataset.
func (a *app) indexRequest() domain.IndexRequest {
	return domain.IndexRequest{
		SourceDir:         a.cfg.Index.SourceDir,
		EmbeddingModel:    a.cfg.Index.EmbeddingModel,
		Dataset:           a.cfg.Index.Dataset,
		MaxChunksPerIndex: a.cfg.Index.MaxChunksPerIndex,
		Chunking:          a.cfg.Chunker.Chunking(),
	}
}

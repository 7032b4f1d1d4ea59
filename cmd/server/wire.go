package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/furnilens/backend/config"
	"github.com/furnilens/backend/internal/domain"
	"github.com/furnilens/backend/internal/infrastructure/cache"
	"github.com/furnilens/backend/internal/infrastructure/catalog"
	"github.com/furnilens/backend/internal/infrastructure/gemini"
	"github.com/furnilens/backend/internal/infrastructure/qdrant"
)

// closer collects resources released on shutdown
type closer []func() error

func (c *closer) add(f func() error) { *c = append(*c, f) }

func (c closer) close() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			log.Warn().Err(err).Msg("[MAIN] Error during shutdown")
		}
	}
}

func newCatalogStore(cfg *config.Config) *catalog.Store {
	loader := catalog.NewLoader()
	return catalog.NewStore(cfg.Catalog.Path, cfg.Catalog.LoadTimeout, loader.LoadFile)
}

// newCache builds the configured cache backend
func newCache(ctx context.Context, cfg *config.Config, closers *closer) (domain.CacheRepository, error) {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.Cache.RedisURL})
		if err != nil {
			return nil, err
		}
		closers.add(redisCache.Close)
		log.Info().Msg("[MAIN] Using Redis cache")
		return redisCache, nil
	}

	memoryCache := cache.NewMemoryCache()
	closers.add(memoryCache.Close)
	log.Info().Msg("[MAIN] Using in-memory cache")
	return memoryCache, nil
}

// newGemini returns nil when no API key is configured
func newGemini(ctx context.Context, cfg *config.Config) (*gemini.Client, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("[MAIN] Gemini API key not configured, using template messages")
		return nil, nil
	}

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:            cfg.Gemini.APIKey,
		Model:             cfg.Gemini.Model,
		EmbeddingModel:    cfg.Gemini.EmbeddingModel,
		Dimension:         cfg.Vector.Dimension,
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
		Debug:             cfg.Search.Debug,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Msgf("[MAIN] Gemini configured (model %s)", cfg.Gemini.Model)
	return client, nil
}

func newQdrant(cfg *config.Config, closers *closer) (*qdrant.Client, error) {
	client, err := qdrant.Dial(qdrant.Config{
		Host:       cfg.Vector.Host,
		Port:       cfg.Vector.Port,
		Collection: cfg.Vector.Collection,
		Dimension:  cfg.Vector.Dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant: %w", err)
	}
	closers.add(client.Close)
	return client, nil
}

package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque bytes; callers own the encoding.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogProvider hands out the process-wide catalog, loading it on first use
type CatalogProvider interface {
	Get(ctx context.Context) (*Catalog, error)
	Loaded() bool
}

// VectorSearcher ranks catalog ids by semantic similarity to a query
type VectorSearcher interface {
	SemanticSearch(ctx context.Context, query string, maxResults int, filters VectorFilters) ([]VectorMatch, error)
}

// TextGenerator phrases a response message for a result list
type TextGenerator interface {
	EnhanceMessage(ctx context.Context, query string, products []ProductSummary) (string, error)
}

// Embedder turns texts into embedding vectors
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

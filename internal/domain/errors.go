package domain

import "errors"

var (
	// ErrInvalidQuery is returned when a search query is empty or too short
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrCatalogUnavailable is returned when the catalog source cannot be read
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrProductNotFound is returned when a product id is not in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrVectorSearchFailed is returned when the vector search service fails
	ErrVectorSearchFailed = errors.New("vector search failed")

	// ErrNoVectorResults is returned when the vector search service has nothing usable
	ErrNoVectorResults = errors.New("vector search returned no usable results")

	// ErrGenerationFailed is returned when the generative text service fails
	ErrGenerationFailed = errors.New("text generation failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrSessionNotFound is returned when no context exists for a session id
	ErrSessionNotFound = errors.New("session not found")
)

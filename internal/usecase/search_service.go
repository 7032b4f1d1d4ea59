package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime/debug"
	"strings"
	"time"

	"github.com/furnilens/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/furnilens/backend/internal/usecase")

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	DefaultMaxResults  int
	MinQueryLength     int
	CacheEnabled       bool
	CacheTTL           time.Duration
	VectorTimeout      time.Duration
	GeneratorTimeout   time.Duration
	Random             *rand.Rand // fallback sampling source; nil seeds from the clock
	EnableDebugLogging bool
}

// SearchService runs the search pipeline: interpret, rank, filter, phrase.
// The vector searcher and text generator are optional.
type SearchService struct {
	catalog     domain.CatalogProvider
	cache       domain.CacheRepository
	vector      domain.VectorSearcher
	generator   domain.TextGenerator
	sessions    *SessionService
	interpreter *QueryInterpreter
	scorer      *RelevanceScorer
	assembler   *ResultAssembler

	defaultMaxResults int
	minQueryLength    int
	cacheEnabled      bool
	cacheTTL          time.Duration
	vectorTimeout     time.Duration
	generatorTimeout  time.Duration
}

// NewSearchService creates a new search service with dependencies.
// vector and generator may be nil.
func NewSearchService(
	catalog domain.CatalogProvider,
	cache domain.CacheRepository,
	vector domain.VectorSearcher,
	generator domain.TextGenerator,
	sessions *SessionService,
	config SearchServiceConfig,
) *SearchService {
	minQueryLength := config.MinQueryLength
	if minQueryLength <= 0 {
		minQueryLength = 2
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	vectorTimeout := config.VectorTimeout
	if vectorTimeout <= 0 {
		vectorTimeout = 5 * time.Second
	}

	generatorTimeout := config.GeneratorTimeout
	if generatorTimeout <= 0 {
		generatorTimeout = 10 * time.Second
	}

	return &SearchService{
		catalog:           catalog,
		cache:             cache,
		vector:            vector,
		generator:         generator,
		sessions:          sessions,
		interpreter:       NewQueryInterpreter(config.EnableDebugLogging),
		scorer:            NewRelevanceScorer(config.EnableDebugLogging),
		assembler:         NewResultAssembler(config.Random),
		defaultMaxResults: ClampMaxResults(config.DefaultMaxResults),
		minQueryLength:    minQueryLength,
		cacheEnabled:      config.CacheEnabled,
		cacheTTL:          cacheTTL,
		vectorTimeout:     vectorTimeout,
		generatorTimeout:  generatorTimeout,
	}
}

// Search answers one search request.
// Flow: validate -> interpret -> session -> cache -> semantic or keyword ranking -> message -> cache.
// Only an invalid query is returned as an error; any other failure becomes a
// response with Success false.
func (s *SearchService) Search(
	ctx context.Context,
	request *domain.SearchRequest,
) (response *domain.SearchResponse, err error) {
	start := time.Now()

	if request == nil {
		return nil, domain.ErrInvalidQuery
	}
	if err := ValidateQuery(request.Query, s.minQueryLength); err != nil {
		return nil, err
	}

	sessionID := request.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, span := tracer.Start(ctx, "search")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("[SEARCH] Panic while searching %q: %v\n%s", request.Query, r, debug.Stack())
			response = failedResponse(request.Query, sessionID, start)
			err = nil
		}
	}()

	maxResults := s.defaultMaxResults
	if request.MaxResults != nil {
		maxResults = ClampMaxResults(*request.MaxResults)
	}

	intent := s.interpreter.Interpret(request.Query)
	category := applyFilters(&intent, request.Filters)

	if _, err := s.sessions.Record(ctx, sessionID, request.Query, intent); err != nil {
		log.Warn().Err(err).Msgf("[SESSION] Failed to update session %s", sessionID)
	}

	cacheKey := generateCacheKey(request.Query, intent, category, maxResults)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		cached.Query = request.Query
		cached.SessionID = sessionID
		cached.Cached = true
		cached.ProcessingTime = elapsedSeconds(start)
		return cached, nil
	}

	catalog, loadErr := s.catalog.Get(ctx)
	if loadErr != nil {
		log.Warn().Err(loadErr).Msg("[SEARCH] Catalog unavailable, serving empty results")
	}

	results, method, fallback, err := s.rank(ctx, request.Query, intent, category, maxResults, catalog)
	if err != nil {
		log.Error().Err(err).Msgf("[SEARCH] Search failed for %q", request.Query)
		return failedResponse(request.Query, sessionID, start), nil
	}

	response = &domain.SearchResponse{
		Success:        true,
		Message:        s.composeMessage(ctx, request.Query, intent, results, method),
		Query:          request.Query,
		SessionID:      sessionID,
		ResultsCount:   len(results),
		Results:        results,
		SearchMethod:   method,
		QueryAnalysis:  &intent,
		ProcessingTime: elapsedSeconds(start),
	}

	span.SetAttributes(
		attribute.String("search.method", method),
		attribute.Int("search.results", len(results)),
		attribute.Bool("search.fallback", fallback),
	)
	log.Info().Msgf("[SEARCH] %q -> %d results via %s (fallback: %v) in %.3fs",
		request.Query, len(results), method, fallback, response.ProcessingTime)

	// Random samples and degraded answers are not worth repeating
	if loadErr == nil && !fallback && len(results) > 0 {
		if err := s.setInCache(ctx, cacheKey, response); err != nil {
			log.Warn().Err(err).Msg("[SEARCH] Failed to cache response")
		}
	}

	return response, nil
}

// rank returns the ranked results and how they were produced. fallback is true
// when the results are a random sample rather than matches.
func (s *SearchService) rank(
	ctx context.Context,
	query string,
	intent domain.QueryIntent,
	category string,
	maxResults int,
	catalog *domain.Catalog,
) ([]domain.ScoredResult, string, bool, error) {
	method := domain.SearchMethodKeyword

	if s.vector != nil && catalog.Len() > 0 {
		results, err := s.semanticSearch(ctx, query, intent, category, maxResults, catalog)
		if err == nil {
			return results, domain.SearchMethodSemantic, false, nil
		}
		log.Warn().Err(err).Msg("[SEARCH] Semantic search unavailable, using keyword search")
		method = domain.SearchMethodKeywordFallback
	}

	scored, err := s.scorer.ScoreCatalog(ctx, intent.Terms, catalog)
	if err != nil {
		return nil, method, false, err
	}

	results, fallback := s.assembler.Assemble(scored, catalog, AssembleOptions{
		MinPrice:      intent.MinPrice,
		MaxPrice:      intent.MaxPrice,
		RelevanceTier: intent.RelevanceTier,
		Category:      category,
		MaxResults:    maxResults,
	})
	return results, method, fallback, nil
}

// semanticSearch asks the vector service and maps its hits back to catalog records
func (s *SearchService) semanticSearch(
	ctx context.Context,
	query string,
	intent domain.QueryIntent,
	category string,
	maxResults int,
	catalog *domain.Catalog,
) ([]domain.ScoredResult, error) {
	vctx, cancel := context.WithTimeout(ctx, s.vectorTimeout)
	defer cancel()

	matches, err := s.vector.SemanticSearch(vctx, query, maxResults, domain.VectorFilters{
		MinPrice: intent.MinPrice,
		MaxPrice: intent.MaxPrice,
		Category: category,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVectorSearchFailed, err)
	}

	results := make([]domain.ScoredResult, 0, len(matches))
	for _, m := range matches {
		product, err := lookupProduct(catalog, m.ID)
		if err != nil {
			log.Debug().Err(err).Msgf("[SEARCH] Skipping vector hit %s", m.ID)
			continue
		}
		product.SimilarityScore = m.SimilarityScore
		results = append(results, product)
		if len(results) == maxResults {
			break
		}
	}

	if len(results) == 0 {
		return nil, domain.ErrNoVectorResults
	}
	return results, nil
}

// lookupProduct returns a copy of the catalog record for id or domain.ErrProductNotFound
func lookupProduct(catalog *domain.Catalog, id string) (domain.ProductRecord, error) {
	product, ok := catalog.Get(id)
	if !ok {
		return domain.ProductRecord{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return product, nil
}

// composeMessage asks the text generator for a message and falls back to the
// template. Either way the message ends with the search method suffix.
func (s *SearchService) composeMessage(
	ctx context.Context,
	query string,
	intent domain.QueryIntent,
	results []domain.ScoredResult,
	method string,
) string {
	message := buildResponseMessage(query, intent, results) + methodSuffix(method, false)
	if s.generator == nil || len(results) == 0 {
		return message
	}

	gctx, cancel := context.WithTimeout(ctx, s.generatorTimeout)
	defer cancel()

	enhanced, err := s.generator.EnhanceMessage(gctx, query, summarize(results))
	if err != nil || strings.TrimSpace(enhanced) == "" {
		if err == nil {
			err = domain.ErrGenerationFailed
		}
		log.Debug().Err(err).Msg("[SEARCH] Using template message")
		return message
	}
	return strings.TrimSpace(enhanced) + methodSuffix(method, true)
}

// applyFilters lets explicit request filters override bounds parsed from the
// query text. It returns the requested category.
func applyFilters(intent *domain.QueryIntent, filters *domain.SearchFilters) string {
	if filters == nil {
		return ""
	}
	if filters.MinPrice != nil {
		intent.MinPrice = filters.MinPrice
	}
	if filters.MaxPrice != nil {
		intent.MaxPrice = filters.MaxPrice
	}
	return strings.TrimSpace(filters.Category)
}

// generateCacheKey creates a cache key from the query and everything that
// changes its answer.
// Format: "search:{normalized_query}:{min}:{max}:{tier}:{category}:{limit}"
func generateCacheKey(query string, intent domain.QueryIntent, category string, maxResults int) string {
	return fmt.Sprintf("search:%s:%s:%s:%s:%s:%d",
		normalizeForCacheKey(query),
		formatBound(intent.MinPrice),
		formatBound(intent.MaxPrice),
		intent.RelevanceTier,
		normalizeForCacheKey(category),
		maxResults)
}

// normalizeForCacheKey lowercases s and collapses whitespace
func normalizeForCacheKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// getFromCache retrieves a stored search response
func (s *SearchService) getFromCache(ctx context.Context, key string) (*domain.SearchResponse, error) {
	if !s.cacheEnabled {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var response domain.SearchResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, errors.Join(domain.ErrCacheMiss, err)
	}
	return &response, nil
}

// setInCache stores a search response
func (s *SearchService) setInCache(ctx context.Context, key string, response *domain.SearchResponse) error {
	if !s.cacheEnabled {
		return nil
	}

	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}

func failedResponse(query, sessionID string, start time.Time) *domain.SearchResponse {
	return &domain.SearchResponse{
		Success:        false,
		Message:        SearchFailedMessage,
		Query:          query,
		SessionID:      sessionID,
		Results:        []domain.ScoredResult{},
		ProcessingTime: elapsedSeconds(start),
	}
}

// elapsedSeconds returns the time since start in seconds, rounded to milliseconds
func elapsedSeconds(start time.Time) float64 {
	return math.Round(time.Since(start).Seconds()*1000) / 1000
}

package usecase

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/furnilens/backend/internal/domain"
)

// Result limits
const (
	DefaultMaxResults = 20
	MaxResultsLimit   = 100
)

// Relevance tier score bands
const (
	lowTierMin  = 0.1
	lowTierMax  = 5.0
	highTierMin = 8.0 // exclusive
)

// AssembleOptions are the constraints applied to a scored list
type AssembleOptions struct {
	MinPrice      *float64
	MaxPrice      *float64
	RelevanceTier domain.RelevanceTier
	Category      string
	MaxResults    int
}

// ResultAssembler ranks, filters and truncates scored results
type ResultAssembler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewResultAssembler creates an assembler drawing fallback samples from rng.
// A nil rng is seeded from the clock.
func NewResultAssembler(rng *rand.Rand) *ResultAssembler {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &ResultAssembler{rng: rng}
}

// Assemble sorts scored by score descending, keeping catalog order for ties,
// then applies the price, tier and category filters. When nothing survives it
// returns a random sample of the whole catalog instead and reports fallback.
func (a *ResultAssembler) Assemble(
	scored []domain.ScoredResult,
	catalog *domain.Catalog,
	opts AssembleOptions,
) (results []domain.ScoredResult, fallback bool) {
	limit := ClampMaxResults(opts.MaxResults)

	results = slices.Clone(scored)
	slices.SortStableFunc(results, func(x, y domain.ScoredResult) int {
		switch {
		case x.SimilarityScore > y.SimilarityScore:
			return -1
		case x.SimilarityScore < y.SimilarityScore:
			return 1
		}
		return 0
	})

	results = filterByPrice(results, opts.MinPrice, opts.MaxPrice)
	results = filterByTier(results, opts.RelevanceTier)
	results = filterByCategory(results, opts.Category)

	if len(results) == 0 {
		return a.sample(catalog, limit), catalog.Len() > 0
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, false
}

// sample draws min(limit, catalog size) distinct records uniformly. Records get
// ascending scores 1.0+0.1*i in draw order and are returned highest first.
func (a *ResultAssembler) sample(catalog *domain.Catalog, limit int) []domain.ScoredResult {
	n := catalog.Len()
	if n == 0 {
		return []domain.ScoredResult{}
	}
	k := min(limit, n)

	a.mu.Lock()
	picks := a.rng.Perm(n)[:k]
	a.mu.Unlock()

	results := make([]domain.ScoredResult, k)
	for i, idx := range picks {
		r := catalog.Products[idx]
		r.SimilarityScore = roundScore(1.0 + 0.1*float64(i))
		results[k-1-i] = r
	}
	return results
}

// ClampMaxResults bounds a requested result count to 1..MaxResultsLimit,
// using DefaultMaxResults when unset.
func ClampMaxResults(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxResults
	case n > MaxResultsLimit:
		return MaxResultsLimit
	}
	return n
}

// filterByPrice drops records outside the bounds. Records without a price are
// kept only when no bound is active.
func filterByPrice(results []domain.ScoredResult, minPrice, maxPrice *float64) []domain.ScoredResult {
	if minPrice == nil && maxPrice == nil {
		return results
	}
	return slices.DeleteFunc(results, func(r domain.ScoredResult) bool {
		if r.Price == nil {
			return true
		}
		if minPrice != nil && *r.Price < *minPrice {
			return true
		}
		return maxPrice != nil && *r.Price > *maxPrice
	})
}

func filterByTier(results []domain.ScoredResult, tier domain.RelevanceTier) []domain.ScoredResult {
	switch tier {
	case domain.RelevanceLow:
		return slices.DeleteFunc(results, func(r domain.ScoredResult) bool {
			return r.SimilarityScore < lowTierMin || r.SimilarityScore > lowTierMax
		})
	case domain.RelevanceHigh:
		return slices.DeleteFunc(results, func(r domain.ScoredResult) bool {
			return r.SimilarityScore <= highTierMin
		})
	}
	return results
}

// filterByCategory keeps records with a category equal to category, ignoring case
func filterByCategory(results []domain.ScoredResult, category string) []domain.ScoredResult {
	category = strings.TrimSpace(category)
	if category == "" {
		return results
	}
	return slices.DeleteFunc(results, func(r domain.ScoredResult) bool {
		for _, c := range r.Categories {
			if strings.EqualFold(c, category) {
				return false
			}
		}
		return true
	})
}

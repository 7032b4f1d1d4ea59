package usecase

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/furnilens/backend/internal/domain"
)

const topN = 10

// priceRanges are the analytics price buckets; upper bounds are exclusive
var priceRanges = []struct {
	label    string
	min, max float64
}{
	{"Under $50", 0, 50},
	{"$50-$100", 50, 100},
	{"$100-$200", 100, 200},
	{"$200-$500", 200, 500},
	{"$500+", 500, math.Inf(1)},
}

// AnalyticsService derives aggregate views from the loaded catalog
type AnalyticsService struct {
	catalog domain.CatalogProvider

	mu       sync.Mutex
	computed *domain.Catalog
	cached   *domain.Analytics
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(catalog domain.CatalogProvider) *AnalyticsService {
	return &AnalyticsService{catalog: catalog}
}

// Analytics returns the aggregate view, computed once per loaded catalog
func (s *AnalyticsService) Analytics(ctx context.Context) (*domain.Analytics, error) {
	catalog, err := s.loadedCatalog(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.computed == catalog && s.cached != nil {
		return s.cached, nil
	}

	s.cached = computeAnalytics(catalog)
	s.computed = catalog
	return s.cached, nil
}

// Categories returns primary category counts, most common first
func (s *AnalyticsService) Categories(ctx context.Context) ([]domain.NamedCount, error) {
	catalog, err := s.loadedCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return countBy(catalog.Products, func(p *domain.ProductRecord) string { return p.PrimaryCategory }), nil
}

// Brands returns brand counts, most common first
func (s *AnalyticsService) Brands(ctx context.Context) ([]domain.NamedCount, error) {
	catalog, err := s.loadedCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return countBy(catalog.Products, func(p *domain.ProductRecord) string { return p.Brand }), nil
}

// loadedCatalog returns the catalog or domain.ErrCatalogUnavailable when it is empty
func (s *AnalyticsService) loadedCatalog(ctx context.Context) (*domain.Catalog, error) {
	catalog, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, err
	}
	if catalog.Len() == 0 {
		return nil, domain.ErrCatalogUnavailable
	}
	return catalog, nil
}

func computeAnalytics(catalog *domain.Catalog) *domain.Analytics {
	products := catalog.Products
	total := len(products)

	categories := countBy(products, func(p *domain.ProductRecord) string { return p.PrimaryCategory })
	brands := countBy(products, func(p *domain.ProductRecord) string { return p.Brand })
	materials := countBy(products, func(p *domain.ProductRecord) string { return p.Material })
	colors := countBy(products, func(p *domain.ProductRecord) string { return p.Color })

	stats := domain.PriceStats{}
	buckets := make([]domain.PriceBucket, len(priceRanges))
	for i, r := range priceRanges {
		buckets[i].Label = r.label
	}
	completeness := domain.DataCompleteness{TotalProducts: total}
	dims := domain.DimensionStats{}
	sum := 0.0
	categoryCount := 0

	for i := range products {
		p := &products[i]

		if p.Title != "" {
			completeness.WithTitle++
		}
		if p.PrimaryCategory != "" {
			completeness.WithCategory++
		}
		if p.Brand != "" {
			completeness.WithBrand++
		}
		if p.Material != "" {
			completeness.WithMaterial++
		}
		if p.Color != "" {
			completeness.WithColor++
		}
		if len(p.Images) > 0 {
			completeness.WithImages++
		}
		if p.HasDescription {
			completeness.WithDescription++
		}
		categoryCount += p.CategoryCount
		if d := p.Dimensions; d != nil {
			dims.ProductsWithDimensions++
			dims.AvgLength += d.Length
			dims.AvgWidth += d.Width
			dims.AvgHeight += d.Height
		}

		if p.Price == nil {
			continue
		}
		price := *p.Price
		if stats.ProductsWithPrices == 0 || price < stats.MinPrice {
			stats.MinPrice = price
		}
		if price > stats.MaxPrice {
			stats.MaxPrice = price
		}
		sum += price
		stats.ProductsWithPrices++

		for j, r := range priceRanges {
			if price >= r.min && price < r.max {
				buckets[j].Count++
				break
			}
		}
	}

	completeness.WithPrice = stats.ProductsWithPrices
	stats.ProductsWithoutPrices = total - stats.ProductsWithPrices
	if stats.ProductsWithPrices > 0 {
		stats.AvgPrice = roundCents(sum / float64(stats.ProductsWithPrices))
	}
	if n := float64(dims.ProductsWithDimensions); n > 0 {
		dims.AvgLength = roundCents(dims.AvgLength / n)
		dims.AvgWidth = roundCents(dims.AvgWidth / n)
		dims.AvgHeight = roundCents(dims.AvgHeight / n)
	}
	avgCategories := 0.0
	if total > 0 {
		avgCategories = roundCents(float64(categoryCount) / float64(total))
	}

	return &domain.Analytics{
		Overview: domain.CatalogOverview{
			TotalProducts:    total,
			UniqueCategories: len(categories),
			UniqueBrands:     len(brands),
			UniqueMaterials:  len(materials),
			UniqueColors:     len(colors),

			AvgCategoriesPerProduct: avgCategories,
		},
		PriceStats:        stats,
		PriceDistribution: buckets,
		TopCategories:     head(categories, topN),
		TopBrands:         head(brands, topN),
		TopMaterials:      head(materials, topN),
		TopColors:         head(colors, topN),
		DimensionStats:    dims,
		DataCompleteness:  completeness,
		GeneratedAt:       time.Now(),
	}
}

// countBy counts non-empty keys, sorted by count descending then name
func countBy(products []domain.ProductRecord, key func(*domain.ProductRecord) string) []domain.NamedCount {
	counts := make(map[string]int)
	for i := range products {
		if k := key(&products[i]); k != "" {
			counts[k]++
		}
	}

	result := make([]domain.NamedCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, domain.NamedCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func head(counts []domain.NamedCount, n int) []domain.NamedCount {
	if len(counts) > n {
		return counts[:n]
	}
	return counts
}

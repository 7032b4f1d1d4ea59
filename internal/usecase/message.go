package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/furnilens/backend/internal/domain"
)

const (
	searchCoverage   = " - searched across title, brand, description, categories, materials, colors, manufacturer, and all product details."
	noResultCoverage = " across title, brand, description, price, categories, manufacturer, materials, colors, and other product details. Try adjusting your search terms."

	// SearchFailedMessage is returned when the search pipeline fails unexpectedly
	SearchFailedMessage = "I encountered an error while searching. Please try again with a different query."
)

// Message suffixes naming how the results were found
const (
	keywordSuffix          = " Using keyword search."
	semanticSuffix         = " Powered by semantic vector search."
	enhancedSuffix         = " Enhanced with Gemini AI insights."
	enhancedSemanticSuffix = " Enhanced with Gemini AI and semantic vector search."
)

// summaryLimit is how many results are described to the text generator
const summaryLimit = 5

// buildResponseMessage phrases the deterministic response for a result list
func buildResponseMessage(query string, intent domain.QueryIntent, results []domain.ScoredResult) string {
	display := displayQuery(query)

	if len(results) == 0 {
		return fmt.Sprintf("I couldn't find any furniture matching '%s'%s%s", display, missPriceInfo(intent), noResultCoverage)
	}

	noun := "products"
	if len(results) == 1 {
		noun = "product"
	}

	return fmt.Sprintf("Found %d %s matching '%s'%s%s%s",
		len(results), noun, display, hitPriceInfo(intent), relevanceInfo(intent.RelevanceTier, results), searchCoverage)
}

// missPriceInfo describes the price bounds of a search that found nothing
func missPriceInfo(intent domain.QueryIntent) string {
	if !intent.HasPriceBound() {
		return ""
	}
	switch {
	case intent.MinPrice != nil && intent.MaxPrice != nil:
		return fmt.Sprintf(" between $%s and $%s", formatPrice(*intent.MinPrice), formatPrice(*intent.MaxPrice))
	case intent.MaxPrice != nil:
		return " under $" + formatPrice(*intent.MaxPrice)
	}
	return " over $" + formatPrice(*intent.MinPrice)
}

// hitPriceInfo describes the price bounds of a search with results
func hitPriceInfo(intent domain.QueryIntent) string {
	if !intent.HasPriceBound() {
		return ""
	}
	switch {
	case intent.MinPrice != nil && intent.MaxPrice != nil:
		return fmt.Sprintf(" ($%s - $%s)", formatPrice(*intent.MinPrice), formatPrice(*intent.MaxPrice))
	case intent.MaxPrice != nil:
		return fmt.Sprintf(" (under $%s)", formatPrice(*intent.MaxPrice))
	}
	return fmt.Sprintf(" (over $%s)", formatPrice(*intent.MinPrice))
}

// methodSuffix names the search method, and the generator when it phrased the message
func methodSuffix(method string, enhanced bool) string {
	semantic := method == domain.SearchMethodSemantic
	switch {
	case enhanced && semantic:
		return enhancedSemanticSuffix
	case enhanced:
		return enhancedSuffix
	case semantic:
		return semanticSuffix
	}
	return keywordSuffix
}

// relevanceInfo describes the average score of a result list
func relevanceInfo(tier domain.RelevanceTier, results []domain.ScoredResult) string {
	if len(results) == 0 {
		return ""
	}
	sum := 0.0
	for _, r := range results {
		sum += r.SimilarityScore
	}
	avg := sum / float64(len(results))

	switch tier {
	case domain.RelevanceLow:
		if avg <= lowTierMax {
			return " with low relevance"
		}
		return " with mixed relevance"
	case domain.RelevanceHigh:
		if avg > highTierMin {
			return " with high relevance"
		}
		return " with mixed relevance"
	}

	switch {
	case avg > 10.0:
		return " with high relevance"
	case avg <= 3.0:
		return " with low relevance"
	}
	return ""
}

// displayQuery is the user's query without relevance phrases
func displayQuery(query string) string {
	for _, p := range relevancePatterns {
		query = p.re.ReplaceAllString(query, "")
	}
	return strings.Join(strings.Fields(query), " ")
}

// summarize builds the compact result view sent to the text generator
func summarize(results []domain.ScoredResult) []domain.ProductSummary {
	n := min(len(results), summaryLimit)
	summaries := make([]domain.ProductSummary, n)
	for i := 0; i < n; i++ {
		summaries[i] = domain.ProductSummary{
			Title:    results[i].Title,
			Category: results[i].PrimaryCategory,
			Price:    results[i].Price,
			Material: results[i].Material,
		}
	}
	return summaries
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

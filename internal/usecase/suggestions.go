package usecase

import (
	"context"
	"strings"
)

const popularCategoryLimit = 6

// Suggestions is the payload of the search suggestions endpoint
type Suggestions struct {
	Suggestions       []string            `json:"suggestions"`
	PopularCategories []string            `json:"popular_categories"`
	QuickFilters      map[string][]string `json:"quick_filters"`
}

var defaultSuggestions = []string{
	"Show me modern sofas under $500",
	"I need a comfortable office chair",
	"Find wooden dining tables for 6 people",
	"What storage solutions do you have?",
	"Show me leather furniture",
	"I want a grey sectional sofa",
	"Find bedroom furniture under $300",
	"Show me outdoor patio furniture",
}

// roomSuggestions are matched against the requested category in order
var roomSuggestions = []struct {
	keyword     string
	suggestions []string
}{
	{"living", []string{
		"Show me modern living room sofas",
		"I need a comfortable sectional sofa",
		"Find coffee tables under $200",
		"Show me TV stands and media centers",
	}},
	{"bedroom", []string{
		"Show me platform beds",
		"I need matching nightstands",
		"Find bedroom dressers with mirrors",
		"Show me comfortable mattresses",
	}},
	{"dining", []string{
		"Show me dining tables for 6 people",
		"I need matching dining chairs",
		"Find bar stools for kitchen island",
		"Show me buffets and sideboards",
	}},
}

var quickFilters = map[string][]string{
	"price_ranges": {"Under $100", "Under $300", "Under $500", "Under $1000"},
	"materials":    {"Wood", "Metal", "Leather", "Fabric"},
	"colors":       {"Black", "White", "Brown", "Grey", "Blue"},
}

// Suggestions returns example queries for category plus the most common
// categories of the loaded catalog. Catalog errors only drop the categories.
func (s *AnalyticsService) Suggestions(ctx context.Context, category string) Suggestions {
	result := Suggestions{
		Suggestions:       defaultSuggestions,
		PopularCategories: []string{},
		QuickFilters:      quickFilters,
	}

	if category != "" {
		lower := strings.ToLower(category)
		for _, room := range roomSuggestions {
			if strings.Contains(lower, room.keyword) {
				result.Suggestions = room.suggestions
				break
			}
		}
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		return result
	}
	for _, c := range head(categories, popularCategoryLimit) {
		result.PopularCategories = append(result.PopularCategories, c.Name)
	}
	return result
}

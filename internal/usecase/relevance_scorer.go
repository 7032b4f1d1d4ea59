package usecase

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/furnilens/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// Per-field weights added when a query term is found in the field
const (
	weightTitleExact      = 4.0 // Term is the whole title or a whole word of it
	weightTitle           = 2.0 // Any other title substring hit
	weightBrand           = 3.0
	weightManufacturer    = 2.5
	weightCategory        = 2.5 // Per matching category entry
	weightPrimaryCategory = 2.0
	weightMaterial        = 2.0
	weightColor           = 2.0
	weightDescription     = 1.5
	weightCountry         = 1.5
	weightPrice           = 2.0
	weightImage           = 1.0 // Per matching image URL
	weightDimensions      = 1.0
	weightID              = 1.0
)

// rows between context checks while scoring
const scoreCtxCheckInterval = 500

// RelevanceScorer computes keyword relevance of catalog records
type RelevanceScorer struct {
	enableDebugLogging bool
}

// NewRelevanceScorer creates a new relevance scorer
func NewRelevanceScorer(enableDebugLogging bool) *RelevanceScorer {
	return &RelevanceScorer{
		enableDebugLogging: enableDebugLogging,
	}
}

// ScoreCatalog scores every record and returns copies of those scoring above zero,
// in catalog order. The catalog itself is never modified.
func (s *RelevanceScorer) ScoreCatalog(
	ctx context.Context,
	terms []string,
	catalog *domain.Catalog,
) ([]domain.ScoredResult, error) {
	if len(terms) == 0 || catalog.Len() == 0 {
		return nil, nil
	}

	var scored []domain.ScoredResult
	for i := range catalog.Products {
		if i%scoreCtxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		score := s.Score(terms, &catalog.Products[i])
		if score <= 0 {
			continue
		}

		result := catalog.Products[i]
		result.SimilarityScore = score
		scored = append(scored, result)
	}

	if s.enableDebugLogging {
		log.Debug().Msgf("[SCORE] Terms %v matched %d of %d products", terms, len(scored), catalog.Len())
	}

	return scored, nil
}

// Score sums the field weights for every term found in the record, rounded to
// two decimals. A term hitting several fields counts once per field.
func (s *RelevanceScorer) Score(terms []string, p *domain.ProductRecord) float64 {
	title := strings.ToLower(p.Title)
	paddedTitle := " " + title + " "
	brand := strings.ToLower(p.Brand)
	description := strings.ToLower(p.Description)
	primaryCategory := strings.ToLower(p.PrimaryCategory)
	manufacturer := strings.ToLower(p.Manufacturer)
	dimensions := strings.ToLower(p.PackageDimensions)
	country := strings.ToLower(p.CountryOfOrigin)
	material := strings.ToLower(p.Material)
	color := strings.ToLower(p.Color)
	id := strings.ToLower(p.ID)

	var price string
	if p.Price != nil {
		price = pythonFloatString(*p.Price)
	}

	score := 0.0
	for _, raw := range terms {
		term := strings.ToLower(raw)
		if term == "" {
			continue
		}

		if title != "" {
			if term == title || strings.Contains(paddedTitle, " "+term+" ") {
				score += weightTitleExact
			} else if strings.Contains(title, term) {
				score += weightTitle
			}
		}

		score += fieldWeight(brand, term, weightBrand)
		score += fieldWeight(description, term, weightDescription)

		for _, category := range p.Categories {
			score += fieldWeight(strings.ToLower(category), term, weightCategory)
		}
		score += fieldWeight(primaryCategory, term, weightPrimaryCategory)

		if price != "" {
			stripped := strings.ReplaceAll(term, "$", "")
			if strings.Contains(price, term) || (stripped != "" && strings.Contains(price, stripped)) {
				score += weightPrice
			}
		}

		for _, image := range p.Images {
			score += fieldWeight(strings.ToLower(image), term, weightImage)
		}

		score += fieldWeight(manufacturer, term, weightManufacturer)
		score += fieldWeight(dimensions, term, weightDimensions)
		score += fieldWeight(country, term, weightCountry)
		score += fieldWeight(material, term, weightMaterial)
		score += fieldWeight(color, term, weightColor)
		score += fieldWeight(id, term, weightID)
	}

	return roundScore(score)
}

func fieldWeight(field, term string, weight float64) float64 {
	if field != "" && strings.Contains(field, term) {
		return weight
	}
	return 0
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

// pythonFloatString renders a price the way it appears in the source data
// tooling, always with a decimal point (450 -> "450.0").
func pythonFloatString(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

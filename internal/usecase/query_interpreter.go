package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/furnilens/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// priceBound says which side of the range a price phrase sets
type priceBound int

const (
	boundMax priceBound = iota
	boundMin
	boundRange
)

type pricePattern struct {
	re    *regexp.Regexp
	bound priceBound
}

type relevancePattern struct {
	re   *regexp.Regexp
	tier domain.RelevanceTier
}

const priceNumber = `\$?(\d+(?:\.\d{2})?)`

// Price phrases in priority order; the first pattern that matches wins
var pricePatterns = []pricePattern{
	{regexp.MustCompile(`\bunder\s*` + priceNumber + `\b`), boundMax},
	{regexp.MustCompile(`\bbelow\s*` + priceNumber + `\b`), boundMax},
	{regexp.MustCompile(`\bless\s+than\s*` + priceNumber + `\b`), boundMax},
	{regexp.MustCompile(`\bup\s+to\s*` + priceNumber + `\b`), boundMax},
	{regexp.MustCompile(`\bover\s*` + priceNumber + `\b`), boundMin},
	{regexp.MustCompile(`\babove\s*` + priceNumber + `\b`), boundMin},
	{regexp.MustCompile(`\bmore\s+than\s*` + priceNumber + `\b`), boundMin},
	{regexp.MustCompile(`\bbetween\s*` + priceNumber + `\s*and\s*` + priceNumber + `\b`), boundRange},
}

// Relevance phrases in priority order
var relevancePatterns = []relevancePattern{
	{regexp.MustCompile(`(?i)\b(?:with|under|having)\s+(?:low|poor|bad)\s+relevance\b`), domain.RelevanceLow},
	{regexp.MustCompile(`(?i)\b(?:with|under|having)\s+(?:high|good|strong)\s+relevance\b`), domain.RelevanceHigh},
	{regexp.MustCompile(`(?i)\b(?:low|poor|bad)\s+relevance\b`), domain.RelevanceLow},
	{regexp.MustCompile(`(?i)\b(?:high|good|strong)\s+relevance\b`), domain.RelevanceHigh},
}

var colorVocabulary = map[string]bool{
	"red": true, "blue": true, "green": true, "yellow": true, "orange": true,
	"purple": true, "pink": true, "brown": true, "black": true, "white": true,
	"gray": true, "grey": true, "beige": true, "cream": true, "ivory": true,
	"gold": true, "silver": true, "bronze": true, "navy": true, "maroon": true,
	"teal": true, "turquoise": true, "lime": true, "magenta": true, "cyan": true,
	"tan": true, "khaki": true, "olive": true, "coral": true, "salmon": true,
}

var materialVocabulary = map[string]bool{
	// Woods
	"wood": true, "wooden": true, "oak": true, "pine": true, "maple": true,
	"mahogany": true, "teak": true, "walnut": true, "cherry": true, "birch": true,
	"bamboo": true,
	// Metals
	"metal": true, "steel": true, "iron": true, "aluminum": true,
	// Textiles
	"leather": true, "fabric": true, "cotton": true, "linen": true, "velvet": true,
	// Other
	"plastic": true, "glass": true, "marble": true, "granite": true, "ceramic": true,
}

// QueryInterpreter turns free-text queries into search terms and constraints
type QueryInterpreter struct {
	enableDebugLogging bool
}

// NewQueryInterpreter creates a new query interpreter
func NewQueryInterpreter(enableDebugLogging bool) *QueryInterpreter {
	return &QueryInterpreter{
		enableDebugLogging: enableDebugLogging,
	}
}

// Interpret extracts at most one price phrase and one relevance phrase from the
// query, strips them, and splits what is left into lowercase terms.
func (q *QueryInterpreter) Interpret(query string) domain.QueryIntent {
	text := strings.ToLower(query)

	intent := domain.QueryIntent{RelevanceTier: domain.RelevanceNone}

	// Step 1: price bound
	for _, p := range pricePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		first, _ := strconv.ParseFloat(m[1], 64)
		switch p.bound {
		case boundMax:
			intent.MaxPrice = &first
		case boundMin:
			intent.MinPrice = &first
		case boundRange:
			second, _ := strconv.ParseFloat(m[2], 64)
			intent.MinPrice = &first
			intent.MaxPrice = &second
		}
		text = p.re.ReplaceAllString(text, "")
		break
	}

	// Step 2: relevance tier
	for _, p := range relevancePatterns {
		if p.re.MatchString(text) {
			intent.RelevanceTier = p.tier
			text = p.re.ReplaceAllString(text, "")
			break
		}
	}

	// Step 3: terms and vocabulary mentions
	intent.Terms = strings.Fields(text)
	intent.CleanQuery = strings.Join(intent.Terms, " ")
	for _, term := range intent.Terms {
		word := strings.Trim(term, ",.!?;:'\"")
		if colorVocabulary[word] && !containsString(intent.Colors, word) {
			intent.Colors = append(intent.Colors, word)
		}
		if materialVocabulary[word] && !containsString(intent.Materials, word) {
			intent.Materials = append(intent.Materials, word)
		}
	}

	if q.enableDebugLogging {
		log.Debug().Msgf("[QUERY] Input: %q -> terms=%v min=%v max=%v tier=%s",
			query, intent.Terms, formatBound(intent.MinPrice), formatBound(intent.MaxPrice), intent.RelevanceTier)
	}

	return intent
}

// ValidateQuery rejects queries shorter than minLength after trimming
func ValidateQuery(query string, minLength int) error {
	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < minLength {
		return fmt.Errorf("%w: query must be at least %d characters", domain.ErrInvalidQuery, minLength)
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func formatBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

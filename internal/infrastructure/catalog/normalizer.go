package catalog

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/furnilens/backend/internal/domain"
	"golang.org/x/text/unicode/norm"
)

// Column names of the source catalog file
const (
	colID                = "uniq_id"
	colTitle             = "title"
	colPrice             = "price"
	colCategories        = "categories"
	colImages            = "images"
	colMaterial          = "material"
	colColor             = "color"
	colBrand             = "brand"
	colDescription       = "description"
	colManufacturer      = "manufacturer"
	colCountryOfOrigin   = "country_of_origin"
	colPackageDimensions = "package_dimensions"
)

const maxCombinedDescription = 500

var (
	nonPriceCharsRegex = regexp.MustCompile(`[^0-9.]`)
	dimensionRegex     = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// nullTokens are source values that mean "no value"
var nullTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"None": true,
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".svg"}

var imageIndicators = []string{"image", "img", "photo", "pic"}

// buildRecord normalizes one source row. It returns false when the row has no title.
// seq is the number of records accepted so far and names rows without an id.
func buildRecord(field func(string) string, seq int) (domain.ProductRecord, bool) {
	title := cleanText(field(colTitle))
	if title == "" {
		return domain.ProductRecord{}, false
	}

	id := strings.TrimSpace(field(colID))
	if id == "" {
		id = "product-" + strconv.Itoa(seq)
	}

	categories := cleanList(parseList(field(colCategories)))
	images := filterImages(parseList(field(colImages)))
	originalDescription := cleanText(field(colDescription))

	record := domain.ProductRecord{
		ID:                  id,
		Title:               title,
		Price:               parsePrice(field(colPrice)),
		Categories:          categories,
		Material:            cleanText(field(colMaterial)),
		Color:               cleanText(field(colColor)),
		Brand:               cleanText(field(colBrand)),
		Manufacturer:        cleanText(field(colManufacturer)),
		CountryOfOrigin:     cleanText(field(colCountryOfOrigin)),
		PackageDimensions:   cleanText(field(colPackageDimensions)),
		Description:         originalDescription,
		OriginalDescription: originalDescription,
		Images:              images,
		SimilarityScore:     1.0,
	}

	if record.Description == "" {
		record.Description = title
	}
	if len(categories) > 0 {
		record.PrimaryCategory = categories[len(categories)-1]
	}
	if len(images) > 0 {
		record.PrimaryImage = images[0]
	}

	record.HasDescription = originalDescription != ""
	record.CategoryCount = len(categories)
	record.CombinedText = buildCombinedText(&record)
	record.Dimensions = parseDimensions(record.PackageDimensions)

	return record, true
}

// cleanText trims a value and maps null tokens to the empty string
func cleanText(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if nullTokens[s] {
		return ""
	}
	return s
}

func cleanList(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if item = cleanText(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}

// parsePrice strips everything except digits and dots and parses the rest.
// Nonpositive and unparsable values are absent.
func parsePrice(raw string) *float64 {
	cleaned := nonPriceCharsRegex.ReplaceAllString(raw, "")
	if strings.Count(cleaned, ".") > 1 {
		cleaned = cleaned[:strings.Index(cleaned, ".")]
	}
	if cleaned == "" {
		return nil
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price <= 0 || math.IsInf(price, 0) {
		return nil
	}
	return &price
}

// filterImages trims entries and keeps only URLs that look like images
func filterImages(items []string) []string {
	valid := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" && isValidImageURL(item) {
			valid = append(valid, item)
		}
	}
	return valid
}

// isValidImageURL requires an absolute URL with an image extension or an image keyword
func isValidImageURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	lower := strings.ToLower(raw)
	for _, indicator := range imageIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// buildCombinedText builds the text indexed by the vector service
func buildCombinedText(p *domain.ProductRecord) string {
	parts := []string{p.Title}

	if p.OriginalDescription != "" {
		desc := []rune(p.OriginalDescription)
		if len(desc) > maxCombinedDescription {
			parts = append(parts, string(desc[:maxCombinedDescription])+"...")
		} else {
			parts = append(parts, p.OriginalDescription)
		}
	}

	if len(p.Categories) > 0 {
		top := p.Categories
		if len(top) > 3 {
			top = top[:3]
		}
		parts = append(parts, strings.Join(top, " "))
	}

	if p.Material != "" {
		parts = append(parts, "material: "+p.Material)
	}
	if p.Color != "" {
		parts = append(parts, "color: "+p.Color)
	}
	if p.Brand != "" {
		parts = append(parts, "brand: "+p.Brand)
	}

	return strings.Join(parts, " ")
}

// parseDimensions reads length, width and height from a free-form dimension string
func parseDimensions(raw string) *domain.Dimensions {
	if raw == "" {
		return nil
	}
	numbers := dimensionRegex.FindAllString(strings.ReplaceAll(raw, ",", ""), -1)
	if len(numbers) < 3 {
		return nil
	}

	values := make([]float64, 3)
	for i := range values {
		v, err := strconv.ParseFloat(numbers[i], 64)
		if err != nil {
			return nil
		}
		values[i] = v
	}
	return &domain.Dimensions{Length: values[0], Width: values[1], Height: values[2]}
}

package domain

import "time"

// ProductRecord is one normalized catalog entry
type ProductRecord struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Price               *float64 `json:"price"`
	PrimaryCategory     string   `json:"category,omitempty"`
	Categories          []string `json:"categories"`
	Material            string   `json:"material,omitempty"`
	Color               string   `json:"color,omitempty"`
	Brand               string   `json:"brand,omitempty"`
	Manufacturer        string   `json:"manufacturer,omitempty"`
	CountryOfOrigin     string   `json:"country_of_origin,omitempty"`
	PackageDimensions   string   `json:"package_dimensions,omitempty"`
	Description         string   `json:"description"`
	OriginalDescription string   `json:"original_description,omitempty"`
	Images              []string `json:"images"`
	PrimaryImage        string   `json:"primary_image,omitempty"`
	SimilarityScore     float64  `json:"similarity_score"`

	// Derived at load time for analytics and the vector index
	HasDescription bool        `json:"-"`
	CategoryCount  int         `json:"-"`
	CombinedText   string      `json:"-"`
	Dimensions     *Dimensions `json:"-"`
}

// Dimensions holds parsed package dimensions
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScoredResult is a product copy carrying the score computed for one search
type ScoredResult = ProductRecord

// Catalog is the immutable in-memory set of normalized products.
// It must not be modified after construction.
type Catalog struct {
	Products []ProductRecord
	Source   string
	LoadedAt time.Time

	byID map[string]int
}

// NewCatalog builds a catalog and its id index. Products must already have unique ids.
func NewCatalog(products []ProductRecord, source string) *Catalog {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return &Catalog{
		Products: products,
		Source:   source,
		LoadedAt: time.Now(),
		byID:     byID,
	}
}

// EmptyCatalog returns a catalog with no products
func EmptyCatalog(source string) *Catalog {
	return NewCatalog(nil, source)
}

// Len returns the number of products
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Products)
}

// Get returns a copy of the product with the given id
func (c *Catalog) Get(id string) (ProductRecord, bool) {
	if c == nil {
		return ProductRecord{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return ProductRecord{}, false
	}
	return c.Products[idx], true
}

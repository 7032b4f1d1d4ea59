package domain

import "time"

// NamedCount is one entry of a top-N breakdown
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PriceBucket counts products in one price range
type PriceBucket struct {
	Label string `json:"range"`
	Count int    `json:"count"`
}

// PriceStats summarizes catalog prices
type PriceStats struct {
	MinPrice              float64 `json:"min_price"`
	MaxPrice              float64 `json:"max_price"`
	AvgPrice              float64 `json:"avg_price"`
	ProductsWithPrices    int     `json:"products_with_prices"`
	ProductsWithoutPrices int     `json:"products_without_prices"`
}

// CatalogOverview holds distinct-value counts
type CatalogOverview struct {
	TotalProducts    int `json:"total_products"`
	UniqueCategories int `json:"unique_categories"`
	UniqueBrands     int `json:"unique_brands"`
	UniqueMaterials  int `json:"unique_materials"`
	UniqueColors     int `json:"unique_colors"`

	AvgCategoriesPerProduct float64 `json:"avg_categories_per_product"`
}

// DimensionStats averages parsed package dimensions
type DimensionStats struct {
	ProductsWithDimensions int     `json:"products_with_dimensions"`
	AvgLength              float64 `json:"avg_length"`
	AvgWidth               float64 `json:"avg_width"`
	AvgHeight              float64 `json:"avg_height"`
}

// DataCompleteness counts populated fields
type DataCompleteness struct {
	TotalProducts   int `json:"total_products"`
	WithTitle       int `json:"with_title"`
	WithPrice       int `json:"with_price"`
	WithCategory    int `json:"with_category"`
	WithBrand       int `json:"with_brand"`
	WithMaterial    int `json:"with_material"`
	WithColor       int `json:"with_color"`
	WithImages      int `json:"with_images"`
	WithDescription int `json:"with_description"`
}

// Analytics is the aggregate view of the loaded catalog
type Analytics struct {
	Overview          CatalogOverview  `json:"overview"`
	PriceStats        PriceStats       `json:"price_stats"`
	PriceDistribution []PriceBucket    `json:"price_distribution"`
	TopCategories     []NamedCount     `json:"top_categories"`
	TopBrands         []NamedCount     `json:"top_brands"`
	TopMaterials      []NamedCount     `json:"top_materials"`
	TopColors         []NamedCount     `json:"top_colors"`
	DimensionStats    DimensionStats   `json:"dimension_stats"`
	DataCompleteness  DataCompleteness `json:"data_completeness"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

package domain

// RelevanceTier is a coarse score band requested in a query
type RelevanceTier string

const (
	RelevanceNone RelevanceTier = "none"
	RelevanceLow  RelevanceTier = "low"
	RelevanceHigh RelevanceTier = "high"
)

// QueryIntent is the structured form of one free-text query
type QueryIntent struct {
	Terms         []string      `json:"terms"`
	MinPrice      *float64      `json:"min_price,omitempty"`
	MaxPrice      *float64      `json:"max_price,omitempty"`
	RelevanceTier RelevanceTier `json:"relevance_tier"`
	Colors        []string      `json:"colors,omitempty"`
	Materials     []string      `json:"materials,omitempty"`
	CleanQuery    string        `json:"clean_query"`
}

// HasPriceBound reports whether a min or max price is active
func (q *QueryIntent) HasPriceBound() bool {
	return q.MinPrice != nil || q.MaxPrice != nil
}

// SearchFilters are explicit constraints supplied alongside the query
type SearchFilters struct {
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	Category string   `json:"category,omitempty"`
}

// SearchRequest represents a product search request
type SearchRequest struct {
	Query      string         `json:"query" binding:"required,min=1,max=500"`
	SessionID  string         `json:"session_id,omitempty"`
	MaxResults *int           `json:"max_results,omitempty" binding:"omitempty,min=1,max=100"`
	Filters    *SearchFilters `json:"filters,omitempty"`
}

// Search methods reported in responses
const (
	SearchMethodKeyword         = "keyword"
	SearchMethodSemantic        = "semantic"
	SearchMethodKeywordFallback = "keyword (fallback)"
)

// SearchResponse is returned by the search endpoint
type SearchResponse struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	Query          string         `json:"query"`
	SessionID      string         `json:"session_id,omitempty"`
	ResultsCount   int            `json:"results_count"`
	Results        []ScoredResult `json:"results"`
	SearchMethod   string         `json:"search_method,omitempty"`
	QueryAnalysis  *QueryIntent   `json:"query_analysis,omitempty"`
	Cached         bool           `json:"cached"`
	ProcessingTime float64        `json:"processing_time"`
}

// VectorFilters narrow a semantic search on the vector service side
type VectorFilters struct {
	MinPrice *float64
	MaxPrice *float64
	Category string
}

// VectorMatch is one hit returned by the vector search service
type VectorMatch struct {
	ID              string            `json:"id"`
	SimilarityScore float64           `json:"similarity_score"` // 0-100
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ProductSummary is the compact view of a result sent to the text generator
type ProductSummary struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Price    *float64 `json:"price"`
	Material string   `json:"material"`
}

package qdrant

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog/log"

	"github.com/furnilens/backend/internal/domain"
)

const (
	payloadProductID  = "product_id"
	payloadTitle      = "title"
	payloadCategory   = "category"
	payloadCategories = "categories"
	payloadBrand      = "brand"
	payloadMaterial   = "material"
	payloadColor      = "color"
	payloadPrice      = "price"
)

// Searcher implements domain.VectorSearcher by embedding the query and
// searching the collection
type Searcher struct {
	client   *Client
	embedder domain.Embedder
}

// NewSearcher creates a semantic searcher over client's collection
func NewSearcher(client *Client, embedder domain.Embedder) *Searcher {
	return &Searcher{client: client, embedder: embedder}
}

// SemanticSearch returns up to maxResults matches with scores scaled to 0-100
func (s *Searcher) SemanticSearch(ctx context.Context, query string, maxResults int, filters domain.VectorFilters) ([]domain.VectorMatch, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", domain.ErrVectorSearchFailed, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrVectorSearchFailed)
	}

	resp, err := s.client.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.client.collection,
		Vector:         vectors[0],
		Limit:          uint64(maxResults),
		Filter:         buildFilter(filters),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVectorSearchFailed, err)
	}

	matches := make([]domain.VectorMatch, 0, len(resp.GetResult()))
	for _, pt := range resp.GetResult() {
		meta := payloadStrings(pt.GetPayload())
		id := meta[payloadProductID]
		if id == "" {
			continue
		}
		matches = append(matches, domain.VectorMatch{
			ID:              id,
			SimilarityScore: math.Round(float64(pt.GetScore())*100*100) / 100,
			Metadata:        meta,
		})
	}

	log.Debug().Msgf("[QDRANT] %d matches for query %q", len(matches), query)
	return matches, nil
}

// buildFilter turns price and category constraints into a Qdrant filter; nil when unconstrained
func buildFilter(filters domain.VectorFilters) *pb.Filter {
	var must []*pb.Condition

	if filters.MinPrice != nil || filters.MaxPrice != nil {
		must = append(must, &pb.Condition{ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key:   payloadPrice,
				Range: &pb.Range{Gte: filters.MinPrice, Lte: filters.MaxPrice},
			},
		}})
	}

	if category := strings.ToLower(strings.TrimSpace(filters.Category)); category != "" {
		must = append(must, &pb.Condition{ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key:   payloadCategories,
				Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: category}},
			},
		}})
	}

	if len(must) == 0 {
		return nil
	}
	return &pb.Filter{Must: must}
}

// payloadStrings flattens scalar payload values into strings
func payloadStrings(payload map[string]*pb.Value) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		switch kind := v.GetKind().(type) {
		case *pb.Value_StringValue:
			out[k] = kind.StringValue
		case *pb.Value_DoubleValue:
			out[k] = strconv.FormatFloat(kind.DoubleValue, 'f', -1, 64)
		case *pb.Value_IntegerValue:
			out[k] = strconv.FormatInt(kind.IntegerValue, 10)
		}
	}
	return out
}

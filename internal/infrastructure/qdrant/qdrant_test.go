package qdrant

import (
	"context"
	"errors"
	"testing"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/furnilens/backend/internal/domain"
)

type fakePoints struct {
	searchResp  *pb.SearchResponse
	searchErr   error
	lastSearch  *pb.SearchPoints
	upserts     []*pb.UpsertPoints
	upsertErrs  []error
	upsertCalls int
}

func (f *fakePoints) Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error) {
	f.lastSearch = in
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResp, nil
}

func (f *fakePoints) Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	f.upsertCalls++
	if len(f.upsertErrs) > 0 {
		err := f.upsertErrs[0]
		f.upsertErrs = f.upsertErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	f.upserts = append(f.upserts, in)
	return &pb.PointsOperationResponse{}, nil
}

type fakeCollections struct {
	exists  bool
	created *pb.CreateCollection
}

func (f *fakeCollections) CollectionExists(ctx context.Context, in *pb.CollectionExistsRequest, opts ...grpc.CallOption) (*pb.CollectionExistsResponse, error) {
	return &pb.CollectionExistsResponse{Result: &pb.CollectionExists{Exists: f.exists}}, nil
}

func (f *fakeCollections) Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	f.created = in
	f.exists = true
	return &pb.CollectionOperationResponse{Result: true}, nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func newTestClient(points *fakePoints, collections *fakeCollections) *Client {
	return newClient(points, collections, Config{Collection: "furniture", Dimension: 2})
}

func scoredPoint(productID string, score float32) *pb.ScoredPoint {
	return &pb.ScoredPoint{
		Score: score,
		Payload: map[string]*pb.Value{
			payloadProductID: stringValue(productID),
			payloadTitle:     stringValue("Title " + productID),
			payloadPrice:     {Kind: &pb.Value_DoubleValue{DoubleValue: 149.5}},
		},
	}
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestPointID_IsStable(t *testing.T) {
	assert.Equal(t, PointID("abc"), PointID("abc"))
	assert.NotEqual(t, PointID("abc"), PointID("abd"))
	assert.Len(t, PointID("abc"), 36)
}

func TestSemanticSearch_Success(t *testing.T) {
	points := &fakePoints{searchResp: &pb.SearchResponse{Result: []*pb.ScoredPoint{
		scoredPoint("p1", 0.87654),
		{Score: 0.5, Payload: map[string]*pb.Value{payloadTitle: stringValue("no id")}},
		scoredPoint("p2", 0.5),
	}}}
	searcher := NewSearcher(newTestClient(points, &fakeCollections{}), &fakeEmbedder{})

	matches, err := searcher.SemanticSearch(context.Background(), "oak table", 7, domain.VectorFilters{})

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "p1", matches[0].ID)
	assert.InDelta(t, 87.65, matches[0].SimilarityScore, 0.001)
	assert.Equal(t, "149.5", matches[0].Metadata[payloadPrice])
	assert.Equal(t, uint64(7), points.lastSearch.Limit)
	assert.Equal(t, "furniture", points.lastSearch.CollectionName)
	assert.Nil(t, points.lastSearch.Filter)
}

func TestSemanticSearch_Errors(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		searcher := NewSearcher(newTestClient(&fakePoints{}, &fakeCollections{}), &fakeEmbedder{err: errors.New("quota")})

		_, err := searcher.SemanticSearch(context.Background(), "sofa", 5, domain.VectorFilters{})
		assert.ErrorIs(t, err, domain.ErrVectorSearchFailed)
	})

	t.Run("search failure", func(t *testing.T) {
		points := &fakePoints{searchErr: errors.New("unavailable")}
		searcher := NewSearcher(newTestClient(points, &fakeCollections{}), &fakeEmbedder{})

		_, err := searcher.SemanticSearch(context.Background(), "sofa", 5, domain.VectorFilters{})
		assert.ErrorIs(t, err, domain.ErrVectorSearchFailed)
	})
}

func TestBuildFilter(t *testing.T) {
	assert.Nil(t, buildFilter(domain.VectorFilters{}))

	minPrice, maxPrice := 100.0, 500.0
	filter := buildFilter(domain.VectorFilters{MinPrice: &minPrice, MaxPrice: &maxPrice, Category: " Chairs "})
	require.NotNil(t, filter)
	require.Len(t, filter.Must, 2)

	priceCond := filter.Must[0].GetField()
	assert.Equal(t, payloadPrice, priceCond.Key)
	assert.Equal(t, 100.0, priceCond.Range.GetGte())
	assert.Equal(t, 500.0, priceCond.Range.GetLte())

	categoryCond := filter.Must[1].GetField()
	assert.Equal(t, payloadCategories, categoryCond.Key)
	assert.Equal(t, "chairs", categoryCond.Match.GetKeyword())

	onlyMax := buildFilter(domain.VectorFilters{MaxPrice: &maxPrice})
	assert.Nil(t, onlyMax.Must[0].GetField().Range.Gte)
}

func TestEnsureCollection(t *testing.T) {
	collections := &fakeCollections{}
	client := newTestClient(&fakePoints{}, collections)

	require.NoError(t, client.EnsureCollection(context.Background()))
	require.NotNil(t, collections.created)
	params := collections.created.VectorsConfig.GetParams()
	assert.Equal(t, uint64(2), params.Size)
	assert.Equal(t, pb.Distance_Cosine, params.Distance)

	collections.created = nil
	require.NoError(t, client.EnsureCollection(context.Background()))
	assert.Nil(t, collections.created)
}

func indexCatalog(n int) *domain.Catalog {
	products := make([]domain.ProductRecord, n)
	for i := range products {
		price := float64(10 * (i + 1))
		products[i] = domain.ProductRecord{
			ID:           string(rune('a' + i)),
			Title:        "Item",
			Price:        &price,
			Categories:   []string{"Home", "Chairs"},
			CombinedText: "Item text",
		}
	}
	return domain.NewCatalog(products, "test")
}

func TestIndex_Batches(t *testing.T) {
	points := &fakePoints{}
	embedder := &fakeEmbedder{}
	indexer := NewIndexer(newTestClient(points, &fakeCollections{exists: true}), embedder, 2)

	stats, err := indexer.Index(context.Background(), indexCatalog(5))

	require.NoError(t, err)
	assert.Equal(t, 5, stats.Indexed)
	assert.Equal(t, 0, stats.FailedBatches)
	assert.Equal(t, 3, embedder.calls)
	require.Len(t, points.upserts, 3)

	first := points.upserts[0].Points[0]
	assert.Equal(t, PointID("a"), first.Id.GetUuid())
	assert.Equal(t, "a", first.Payload[payloadProductID].GetStringValue())
	assert.Equal(t, 10.0, first.Payload[payloadPrice].GetDoubleValue())
	assert.Equal(t, "chairs", first.Payload[payloadCategories].GetListValue().Values[1].GetStringValue())
}

func TestIndex_RetriesUpsert(t *testing.T) {
	points := &fakePoints{upsertErrs: []error{errors.New("busy"), nil}}
	indexer := NewIndexer(newTestClient(points, &fakeCollections{exists: true}), &fakeEmbedder{}, 10)
	var waits []time.Duration
	indexer.sleep = func(d time.Duration) { waits = append(waits, d) }

	stats, err := indexer.Index(context.Background(), indexCatalog(3))

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Indexed)
	assert.Equal(t, 2, points.upsertCalls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, waits)
}

func TestIndex_SkipsFailedBatches(t *testing.T) {
	fail := errors.New("down")
	points := &fakePoints{upsertErrs: []error{fail, fail, fail}}
	indexer := NewIndexer(newTestClient(points, &fakeCollections{exists: true}), &fakeEmbedder{}, 2)
	indexer.sleep = func(time.Duration) {}

	stats, err := indexer.Index(context.Background(), indexCatalog(4))

	require.NoError(t, err)
	assert.Equal(t, 1, stats.FailedBatches)
	assert.Equal(t, 2, stats.Indexed)
}

func TestIndex_ContextCancelled(t *testing.T) {
	indexer := NewIndexer(newTestClient(&fakePoints{}, &fakeCollections{exists: true}), &fakeEmbedder{}, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := indexer.Index(ctx, indexCatalog(4))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stats.Indexed)
}

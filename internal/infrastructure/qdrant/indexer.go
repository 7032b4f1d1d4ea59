package qdrant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog/log"

	"github.com/furnilens/backend/internal/domain"
)

const (
	defaultBatchSize  = 100
	upsertMaxAttempts = 3
	pointIDNamespace  = "furnilens:product:"
)

// IndexStats summarizes one indexing run
type IndexStats struct {
	Indexed       int
	FailedBatches int
	Duration      time.Duration
}

// Indexer embeds catalog records and upserts them as points
type Indexer struct {
	client    *Client
	embedder  domain.Embedder
	batchSize int
	sleep     func(time.Duration)
}

// NewIndexer creates an indexer writing to client's collection
func NewIndexer(client *Client, embedder domain.Embedder, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Indexer{client: client, embedder: embedder, batchSize: batchSize, sleep: time.Sleep}
}

// exponentialBackoff returns the wait before retry number attempt (1-based)
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// PointID derives the stable point UUID for a product id
func PointID(productID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(pointIDNamespace+productID)).String()
}

// Index upserts every catalog record. A failing batch is logged and skipped;
// the run only stops early when ctx is done or the collection cannot be prepared.
func (i *Indexer) Index(ctx context.Context, catalog *domain.Catalog) (IndexStats, error) {
	start := time.Now()
	var stats IndexStats

	if err := i.client.EnsureCollection(ctx); err != nil {
		return stats, err
	}

	products := catalog.Products
	for offset := 0; offset < len(products); offset += i.batchSize {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		batch := products[offset:min(offset+i.batchSize, len(products))]
		if err := i.indexBatch(ctx, batch); err != nil {
			stats.FailedBatches++
			log.Error().Msgf("[QDRANT] Batch at offset %d failed: %v", offset, err)
			continue
		}
		stats.Indexed += len(batch)
		log.Info().Msgf("[QDRANT] Indexed %d/%d products", stats.Indexed, len(products))
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (i *Indexer) indexBatch(ctx context.Context, batch []domain.ProductRecord) error {
	texts := make([]string, len(batch))
	for n, p := range batch {
		texts[n] = p.CombinedText
	}

	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embed batch: got %d vectors for %d products", len(vectors), len(batch))
	}

	points := make([]*pb.PointStruct, len(batch))
	for n := range batch {
		points[n] = toPoint(&batch[n], vectors[n])
	}

	wait := true
	var lastErr error
	for attempt := 1; attempt <= upsertMaxAttempts; attempt++ {
		_, err := i.client.points.Upsert(ctx, &pb.UpsertPoints{
			CollectionName: i.client.collection,
			Wait:           &wait,
			Points:         points,
		})
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn().Msgf("[QDRANT] Upsert failed (attempt %d): %v", attempt, err)
		if attempt < upsertMaxAttempts {
			i.sleep(exponentialBackoff(attempt))
		}
	}
	return fmt.Errorf("upsert batch: %w", lastErr)
}

func toPoint(p *domain.ProductRecord, vector []float32) *pb.PointStruct {
	payload := map[string]*pb.Value{
		payloadProductID: stringValue(p.ID),
		payloadTitle:     stringValue(p.Title),
		payloadCategory:  stringValue(p.PrimaryCategory),
		payloadBrand:     stringValue(p.Brand),
		payloadMaterial:  stringValue(p.Material),
		payloadColor:     stringValue(p.Color),
	}
	if p.Price != nil {
		payload[payloadPrice] = &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: *p.Price}}
	}
	if len(p.Categories) > 0 {
		values := make([]*pb.Value, len(p.Categories))
		for n, c := range p.Categories {
			values[n] = stringValue(strings.ToLower(c))
		}
		payload[payloadCategories] = &pb.Value{Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: values}}}
	}

	return &pb.PointStruct{
		Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(p.ID)}},
		Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vector}}},
		Payload: payload,
	}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

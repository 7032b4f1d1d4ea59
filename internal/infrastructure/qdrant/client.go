// Package qdrant provides semantic product search and catalog indexing on Qdrant.
package qdrant

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// pointsAPI is the part of pb.PointsClient used here
type pointsAPI interface {
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
}

// collectionsAPI is the part of pb.CollectionsClient used here
type collectionsAPI interface {
	CollectionExists(ctx context.Context, in *pb.CollectionExistsRequest, opts ...grpc.CallOption) (*pb.CollectionExistsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
}

// Config holds the Qdrant connection settings
type Config struct {
	Host       string
	Port       int
	Collection string
	Dimension  int
}

// Client is a gRPC connection to one Qdrant collection
type Client struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	collection  string
	dimension   uint64
}

// Dial opens a gRPC connection to Qdrant. The connection is established lazily.
func Dial(cfg Config) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}

	c := newClient(pb.NewPointsClient(conn), pb.NewCollectionsClient(conn), cfg)
	c.conn = conn
	return c, nil
}

func newClient(points pointsAPI, collections collectionsAPI, cfg Config) *Client {
	return &Client{
		points:      points,
		collections: collections,
		collection:  cfg.Collection,
		dimension:   uint64(cfg.Dimension),
	}
}

// Collection returns the collection name
func (c *Client) Collection() string {
	return c.collection
}

// EnsureCollection creates the collection with cosine distance when it does not exist
func (c *Client) EnsureCollection(ctx context.Context) error {
	resp, err := c.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{CollectionName: c.collection})
	if err != nil {
		return fmt.Errorf("check collection %s: %w", c.collection, err)
	}
	if resp.GetResult().GetExists() {
		return nil
	}

	_, err = c.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{
			Params: &pb.VectorParams{Size: c.dimension, Distance: pb.Distance_Cosine},
		}},
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", c.collection, err)
	}

	log.Info().Msgf("[QDRANT] Created collection %s (dimension %d)", c.collection, c.dimension)
	return nil
}

// Close closes the underlying connection
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

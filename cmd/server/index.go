package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/furnilens/backend/internal/infrastructure/qdrant"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the catalog and upsert it into the Qdrant collection",
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers closer
	defer closers.close()

	geminiClient, err := newGemini(ctx, cfg)
	if err != nil {
		return err
	}
	if geminiClient == nil {
		return errors.New("indexing needs embeddings: set FURNILENS_GEMINI_API_KEY")
	}

	catalog, err := newCatalogStore(cfg).Get(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	qdrantClient, err := newQdrant(cfg, &closers)
	if err != nil {
		return err
	}

	indexer := qdrant.NewIndexer(qdrantClient, geminiClient, cfg.Vector.BatchSize)
	stats, err := indexer.Index(ctx, catalog)
	if err != nil {
		return fmt.Errorf("index catalog: %w", err)
	}

	log.Info().Msgf("[MAIN] Indexed %d of %d products into %s in %v (%d failed batches)",
		stats.Indexed, catalog.Len(), qdrantClient.Collection(), stats.Duration, stats.FailedBatches)
	if stats.FailedBatches > 0 {
		return fmt.Errorf("%d batches failed", stats.FailedBatches)
	}
	return nil
}

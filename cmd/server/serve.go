package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpDelivery "github.com/furnilens/backend/internal/delivery/http"
	"github.com/furnilens/backend/internal/domain"
	"github.com/furnilens/backend/internal/infrastructure/qdrant"
	"github.com/furnilens/backend/internal/infrastructure/telemetry"
	"github.com/furnilens/backend/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msgf("[MAIN] Starting FurniLens Backend v%s", version)
	log.Info().Msgf("[MAIN] Environment: %s, port: %s, cache: %s", cfg.Server.Environment, cfg.Server.Port, cfg.Cache.Type)

	var closers closer
	defer closers.close()

	tracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return err
	}
	closers.add(func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return tracing.Shutdown(shutdownCtx)
	})

	store := newCatalogStore(cfg)

	cacheRepo, err := newCache(ctx, cfg, &closers)
	if err != nil {
		return err
	}

	geminiClient, err := newGemini(ctx, cfg)
	if err != nil {
		return err
	}

	// Interfaces stay nil unless the collaborator is configured
	var generator domain.TextGenerator
	var vector domain.VectorSearcher
	if geminiClient != nil {
		generator = geminiClient
		if cfg.Vector.Enabled {
			qdrantClient, err := newQdrant(cfg, &closers)
			if err != nil {
				return err
			}
			vector = qdrant.NewSearcher(qdrantClient, geminiClient)
			log.Info().Msgf("[MAIN] Semantic search enabled (collection %s)", qdrantClient.Collection())
		}
	}

	sessions := usecase.NewSessionService(cacheRepo, usecase.SessionServiceConfig{
		MaxHistory: cfg.Session.MaxHistory,
		TTL:        cfg.Session.TTL,
	})
	search := usecase.NewSearchService(store, cacheRepo, vector, generator, sessions, usecase.SearchServiceConfig{
		DefaultMaxResults:  cfg.Search.DefaultMaxResults,
		MinQueryLength:     cfg.Search.MinQueryLength,
		CacheEnabled:       cfg.Cache.Enabled,
		CacheTTL:           cfg.Cache.TTL,
		VectorTimeout:      cfg.Vector.Timeout,
		GeneratorTimeout:   cfg.Gemini.Timeout,
		EnableDebugLogging: cfg.Search.Debug,
	})
	analytics := usecase.NewAnalyticsService(store)

	// Warm the catalog in the background so the first search does not pay for the load
	go func() {
		if _, err := store.Get(ctx); err != nil {
			log.Error().Err(err).Msg("[MAIN] Catalog prewarm failed; searches will retry the load")
		}
	}()

	handler := httpDelivery.NewHandler(search, sessions, analytics, store)
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("[MAIN] Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("[MAIN] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

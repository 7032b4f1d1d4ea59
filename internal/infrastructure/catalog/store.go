package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/furnilens/backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// LoadFunc loads the catalog stored at path
type LoadFunc func(ctx context.Context, path string) (*domain.Catalog, error)

// Store holds the process-wide catalog. The first caller triggers the load,
// concurrent callers share it, and only a successful load is kept.
type Store struct {
	path        string
	loadTimeout time.Duration
	load        LoadFunc

	group   singleflight.Group
	catalog atomic.Pointer[domain.Catalog]
}

// NewStore creates a store that loads path with load, bounded by loadTimeout
func NewStore(path string, loadTimeout time.Duration, load LoadFunc) *Store {
	return &Store{
		path:        path,
		loadTimeout: loadTimeout,
		load:        load,
	}
}

// Get returns the loaded catalog, loading it if necessary.
// On failure it returns an empty catalog and the load error; the next call retries.
func (s *Store) Get(ctx context.Context) (*domain.Catalog, error) {
	if c := s.catalog.Load(); c != nil {
		return c, nil
	}

	ch := s.group.DoChan(s.path, func() (interface{}, error) {
		if c := s.catalog.Load(); c != nil {
			return c, nil
		}

		// The load outlives any single waiter
		loadCtx, cancel := context.WithTimeout(context.Background(), s.loadTimeout)
		defer cancel()

		start := time.Now()
		c, err := s.load(loadCtx, s.path)
		if err != nil {
			return c, err
		}

		s.catalog.Store(c)
		log.Info().Msgf("[CATALOG] Catalog ready with %d products in %v", c.Len(), time.Since(start))
		return c, nil
	})

	select {
	case res := <-ch:
		c, _ := res.Val.(*domain.Catalog)
		if c == nil {
			c = domain.EmptyCatalog(s.path)
		}
		return c, res.Err
	case <-ctx.Done():
		return domain.EmptyCatalog(s.path), fmt.Errorf("%w: waiting for load: %v", domain.ErrCatalogUnavailable, ctx.Err())
	}
}

// Loaded reports whether a catalog has been loaded successfully
func (s *Store) Loaded() bool {
	return s.catalog.Load() != nil
}

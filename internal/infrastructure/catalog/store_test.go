package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/furnilens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadsOnceUnderConcurrency(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(ctx context.Context, path string) (*domain.Catalog, error) {
		calls.Add(1)
		<-release
		return domain.NewCatalog([]domain.ProductRecord{{ID: "p1", Title: "Chair"}}, path), nil
	}
	store := NewStore("products.csv", time.Second, load)

	var wg sync.WaitGroup
	results := make([]*domain.Catalog, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := store.Get(context.Background())
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}

	// let the waiters pile up on the in-flight load
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, store.Loaded())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}

	again, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, results[0], again)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStore_RetriesAfterFailure(t *testing.T) {
	var calls atomic.Int32
	load := func(ctx context.Context, path string) (*domain.Catalog, error) {
		if calls.Add(1) == 1 {
			return domain.EmptyCatalog(path), domain.ErrCatalogUnavailable
		}
		return domain.NewCatalog([]domain.ProductRecord{{ID: "p1", Title: "Chair"}}, path), nil
	}
	store := NewStore("products.csv", time.Second, load)

	c, err := store.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.Equal(t, 0, c.Len())
	assert.False(t, store.Loaded())

	c, err = store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.True(t, store.Loaded())
}

func TestStore_WaiterHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	load := func(ctx context.Context, path string) (*domain.Catalog, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return domain.EmptyCatalog(path), ctx.Err()
	}
	store := NewStore("slow.csv", time.Minute, load)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c, err := store.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.Equal(t, 0, c.Len())
}

func TestStore_LoadTimeout(t *testing.T) {
	load := func(ctx context.Context, path string) (*domain.Catalog, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	store := NewStore("slow.csv", 20*time.Millisecond, load)

	c, err := store.Get(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
}

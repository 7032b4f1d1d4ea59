package cache

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/furnilens/backend/internal/domain"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	cache := NewMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		value   []byte
		ttl     time.Duration
		expired bool
	}{
		{
			name:  "store and retrieve session",
			key:   "session:abc",
			value: []byte(`{"session_id":"abc","previous_queries":["sofa"]}`),
			ttl:   1 * time.Minute,
		},
		{
			name:  "store without expiry",
			key:   "session:forever",
			value: []byte("kept"),
			ttl:   0,
		},
		{
			name:    "store with short TTL",
			key:     "search:oak table",
			value:   []byte("expires-soon"),
			ttl:     1 * time.Millisecond,
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if tt.expired {
				time.Sleep(10 * time.Millisecond)
				if _, err := cache.Get(ctx, tt.key); err != domain.ErrCacheMiss {
					t.Errorf("Expected cache miss after expiration, got error = %v", err)
				}
				return
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !bytes.Equal(got, tt.value) {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	value := []byte("original")
	if err := cache.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("stored value changed with caller slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("stored value changed with returned slice: %q", again)
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := newTestCache(t)

	_, err := cache.Get(context.Background(), "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, []byte("value"), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := cache.Get(ctx, key); err != nil {
		t.Fatalf("Get() before delete error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key := "exists-test"

	exists, err := cache.Exists(ctx, key)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false for non-existent key")
	}

	if err := cache.Set(ctx, key, []byte("value"), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	exists, err = cache.Exists(ctx, key)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if !exists {
		t.Errorf("Exists() = false, want true after setting value")
	}

	shortKey := "short-ttl"
	if err := cache.Set(ctx, shortKey, []byte("value"), 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	exists, err = cache.Exists(ctx, shortKey)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false after expiration")
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("a"), time.Millisecond)
	_ = cache.Set(ctx, "long", []byte("b"), time.Hour)
	_ = cache.Set(ctx, "forever", []byte("c"), 0)

	cache.removeExpired(time.Now().Add(time.Minute))

	if size := cache.Size(); size != 2 {
		t.Errorf("Size() = %d, want 2 after cleanup", size)
	}
	if _, err := cache.Get(ctx, "forever"); err != nil {
		t.Errorf("Get(forever) error = %v", err)
	}
}

func TestMemoryCache_Size(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := cache.Set(ctx, key, []byte{byte(i)}, 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	if err := cache.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if size := cache.Size(); size != 4 {
		t.Errorf("Size() = %d, want 4 after delete", size)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := cache.Set(ctx, key, []byte{byte(i)}, 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := cache.Size(); size != 5 {
		t.Fatalf("Size() = %d, want 5 before clear", size)
	}

	cache.Clear()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
			t.Errorf("Get(%s) after clear error = %v, want %v", key, err, domain.ErrCacheMiss)
		}
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("session:%d", id)
			if err := cache.Set(ctx, key, []byte(key), 1*time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			got, err := cache.Get(ctx, key)
			if err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
			if string(got) != key {
				t.Errorf("Concurrent Get() = %q, want %q", got, key)
			}
		}(i)
	}
	wg.Wait()

	if size := cache.Size(); size != 50 {
		t.Errorf("Size() = %d, want 50", size)
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache()
	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gridsync/core/cell"
	"gridsync/core/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCache_MemoizesWithinTTL(t *testing.T) {
	cache := NewReadCache(time.Minute)
	var reads atomic.Int32
	read := func(context.Context) (*table.Table, error) {
		reads.Add(1)
		return xTable("a", 1), nil
	}

	key := CacheKey("Sheet1", ReadOptions{})
	first, err := cache.GetOrRead(context.Background(), key, read)
	require.NoError(t, err)
	second, err := cache.GetOrRead(context.Background(), key, read)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), reads.Load())

	cache.Invalidate("Sheet1")
	_, err = cache.GetOrRead(context.Background(), key, read)
	require.NoError(t, err)
	assert.Equal(t, int32(2), reads.Load())
}

func TestReadCache_ZeroTTLCoalescesOnly(t *testing.T) {
	cache := NewReadCache(0)
	var reads atomic.Int32
	release := make(chan struct{})
	read := func(context.Context) (*table.Table, error) {
		reads.Add(1)
		<-release
		return xTable("a", 1), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.GetOrRead(context.Background(), "k", read)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), reads.Load(), "concurrent reads share one call")
}

func TestReadCache_ErrorsAreNotCached(t *testing.T) {
	cache := NewReadCache(time.Minute)
	boom := errors.New("boom")

	_, err := cache.GetOrRead(context.Background(), "k", func(context.Context) (*table.Table, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := cache.GetOrRead(context.Background(), "k", func(context.Context) (*table.Table, error) {
		return xTable("a", 1), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestReadCache_InvalidateDuringRead(t *testing.T) {
	cache := NewReadCache(time.Minute)
	key := CacheKey("Sheet1", ReadOptions{})
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan *table.Table)
	go func() {
		stale, err := cache.GetOrRead(context.Background(), key, func(context.Context) (*table.Table, error) {
			close(started)
			<-release
			return xTable("a", 1), nil
		})
		assert.NoError(t, err)
		done <- stale
	}()

	<-started
	cache.Invalidate("Sheet1")

	// A read issued after the invalidation does not join the older flight.
	fresh, err := cache.GetOrRead(context.Background(), key, func(context.Context) (*table.Table, error) {
		return xTable("a", 2), nil
	})
	require.NoError(t, err)
	v, _ := fresh.Get(cell.String("a"), "x")
	assert.Equal(t, cell.Int(2), v)

	close(release)
	stale := <-done
	v, _ = stale.Get(cell.String("a"), "x")
	assert.Equal(t, cell.Int(1), v)

	got, err := cache.GetOrRead(context.Background(), key, func(context.Context) (*table.Table, error) {
		t.Fatal("cached entry expected")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, fresh, got)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "S|id|a,b", CacheKey("S", ReadOptions{IndexColumn: "id", Columns: []string{"a", "b"}}))
}

package blobcache

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"schoolcomm/client/internal/api"
)

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

func newTestCache(t *testing.T, max int, handler http.HandlerFunc) (*Cache, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.New(srv.URL, tokenFunc(func() string { return "T" }))
	return New(client, max), srv
}

func blobHandler(hits *atomic.Int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		io.WriteString(w, "bytes:"+r.URL.Path)
	}
}

func TestAcquireCachesAndResolves(t *testing.T) {
	var hits atomic.Int64
	cache, _ := newTestCache(t, 10, blobHandler(&hits))
	ctx := context.Background()

	url, err := cache.Acquire(ctx, "/media/1/thumbnail")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "blob:"))

	data, ok := cache.Bytes(url)
	require.True(t, ok)
	require.Equal(t, "bytes:/media/1/thumbnail", string(data))

	// Second acquire is a cache hit with the same handle.
	again, err := cache.Acquire(ctx, "/media/1/thumbnail")
	require.NoError(t, err)
	require.Equal(t, url, again)
	require.EqualValues(t, 1, hits.Load())
}

func TestReleaseDoesNotRevoke(t *testing.T) {
	cache, _ := newTestCache(t, 10, blobHandler(nil))
	ctx := context.Background()

	url, err := cache.Acquire(ctx, "/avatars/7")
	require.NoError(t, err)

	cache.Release("/avatars/7")

	_, ok := cache.Bytes(url)
	require.True(t, ok)
	require.Equal(t, 1, cache.Len())
}

func TestEvictOldestUnreferenced(t *testing.T) {
	cache, _ := newTestCache(t, 2, blobHandler(nil))
	ctx := context.Background()

	urlA, err := cache.Acquire(ctx, "/a")
	require.NoError(t, err)
	cache.Release("/a")
	time.Sleep(time.Millisecond)

	urlB, err := cache.Acquire(ctx, "/b")
	require.NoError(t, err)
	cache.Release("/b")
	time.Sleep(time.Millisecond)

	urlC, err := cache.Acquire(ctx, "/c")
	require.NoError(t, err)

	require.Equal(t, 2, cache.Len())
	_, ok := cache.Bytes(urlA)
	require.False(t, ok, "oldest unreferenced entry should be gone")
	_, ok = cache.Bytes(urlB)
	require.True(t, ok)
	_, ok = cache.Bytes(urlC)
	require.True(t, ok)
}

func TestReferencedEntriesSurviveEviction(t *testing.T) {
	cache, _ := newTestCache(t, 2, blobHandler(nil))
	ctx := context.Background()

	urlA, err := cache.Acquire(ctx, "/a") // refs stay at 1
	require.NoError(t, err)
	_, err = cache.Acquire(ctx, "/b")
	require.NoError(t, err)
	_, err = cache.Acquire(ctx, "/c")
	require.NoError(t, err)

	// Nothing is evictable, so the bound is temporarily exceeded.
	require.Equal(t, 3, cache.Len())
	_, ok := cache.Bytes(urlA)
	require.True(t, ok)
}

func TestInvalidateRevokesHandle(t *testing.T) {
	cache, _ := newTestCache(t, 10, blobHandler(nil))
	ctx := context.Background()

	url, err := cache.Acquire(ctx, "/a")
	require.NoError(t, err)

	cache.Invalidate("/a")

	_, ok := cache.Bytes(url)
	require.False(t, ok)
	require.Equal(t, 0, cache.Len())
}

func TestFetchErrorInsertsNothing(t *testing.T) {
	cache, _ := newTestCache(t, 10, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := cache.Acquire(context.Background(), "/missing")
	require.Error(t, err)
	require.Equal(t, 0, cache.Len())
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	var hits atomic.Int64
	release := make(chan struct{})
	cache, _ := newTestCache(t, 10, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		io.WriteString(w, "shared")
	})

	var wg sync.WaitGroup
	urls := make([]string, 8)
	for i := range urls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url, err := cache.Acquire(context.Background(), "/shared")
			require.NoError(t, err)
			urls[i] = url
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, hits.Load())
	for _, url := range urls {
		require.Equal(t, urls[0], url)
	}
	require.Equal(t, 1, cache.Len())
}

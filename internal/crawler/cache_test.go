package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	pages  map[string][]byte
	getErr error
}

func (c *memoryCache) Get(_ context.Context, url string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	body, ok := c.pages[url]
	return body, ok, nil
}

func (c *memoryCache) Set(_ context.Context, url string, body []byte) error {
	c.pages[url] = body
	return nil
}

func TestFetchPageUsesCache(t *testing.T) {
	ts, requests := newTestSite(t)
	cache := &memoryCache{pages: map[string][]byte{}}
	e := NewExtractor(testConfig(ts.URL, 1, 1), WithCache(cache), WithClock(fixedClock))

	first := e.FetchPage(context.Background(), 2)
	second := e.FetchPage(context.Background(), 2)

	require.Len(t, first, 2)
	require.Equal(t, first, second)
	require.Len(t, *requests, 1)
	require.Contains(t, cache.pages, ts.URL+"/?page=2")
}

func TestFetchPageDoesNotCacheFailures(t *testing.T) {
	ts, requests := newTestSite(t, 1)
	cache := &memoryCache{pages: map[string][]byte{}}
	e := NewExtractor(testConfig(ts.URL, 1, 1), WithCache(cache))

	require.Empty(t, e.FetchPage(context.Background(), 1))
	require.Empty(t, e.FetchPage(context.Background(), 1))
	require.Len(t, *requests, 2)
	require.Empty(t, cache.pages)
}

func TestFetchPageCacheErrorFallsBackToNetwork(t *testing.T) {
	ts, requests := newTestSite(t)
	cache := &memoryCache{pages: map[string][]byte{}, getErr: errors.New("redis down")}
	e := NewExtractor(testConfig(ts.URL, 1, 1), WithCache(cache))

	require.Len(t, e.FetchPage(context.Background(), 1), 1)
	require.Len(t, *requests, 1)
}

func TestRedisPageCacheUnreachable(t *testing.T) {
	// a closed listener gives a fast connection refusal
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.Listener.Addr().String()
	ts.Close()

	c := NewRedisPageCache(addr, time.Minute)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, ok, err := c.Get(ctx, "https://example.com/?page=1")
	require.Error(t, err)
	require.False(t, ok)
	require.Error(t, c.Set(ctx, "https://example.com/?page=1", []byte("x")))
}

func TestNewRedisPageCacheParsesURL(t *testing.T) {
	c := NewRedisPageCache("redis://:secret@cache.internal:6380/2", time.Minute)
	defer c.Close()
	require.Equal(t, "cache.internal:6380", c.Client.Options().Addr)
	require.Equal(t, 2, c.Client.Options().DB)

	bare := NewRedisPageCache("localhost:6379", time.Minute)
	defer bare.Close()
	require.Equal(t, "localhost:6379", bare.Client.Options().Addr)
}

package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fashionetl/internal/config"
	"fashionetl/internal/etlerr"
	"fashionetl/internal/model"
	"fashionetl/internal/observability"
)

const defaultTimeout = 10 * time.Second

// Extractor pulls product cards off the listing pages, one page at a time.
type Extractor struct {
	cfg    config.Scrape
	client *http.Client
	cache  PageCache
	now    func() time.Time
}

type Option func(*Extractor)

func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) { e.client = c }
}

func WithCache(c PageCache) Option {
	return func(e *Extractor) { e.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func NewExtractor(cfg config.Scrape, opts ...Option) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	e := &Extractor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchPage returns the products on one listing page. Network and parse
// failures are logged and yield an empty result; the page is never retried.
func (e *Extractor) FetchPage(ctx context.Context, page int) []model.RawProduct {
	url := e.cfg.PageURL(page)

	body, err := e.fetch(ctx, url)
	if err != nil {
		slog.Warn("failed to fetch page", "page", page, "err", err)
		observability.PagesTotal.WithLabelValues("failed").Inc()
		return nil
	}

	products, err := ParseCards(bytes.NewReader(body), e.now())
	if err != nil {
		slog.Warn("failed to parse page", "page", page, "err", err)
		observability.PagesTotal.WithLabelValues("failed").Inc()
		return nil
	}
	if len(products) == 0 {
		slog.Info("no products on page", "page", page)
		observability.PagesTotal.WithLabelValues("empty").Inc()
		return nil
	}

	observability.PagesTotal.WithLabelValues("ok").Inc()
	return products
}

func (e *Extractor) fetch(ctx context.Context, url string) ([]byte, error) {
	if e.cache != nil {
		body, ok, err := e.cache.Get(ctx, url)
		if err != nil {
			slog.Debug("page cache lookup failed", "url", url, "err", err)
		} else if ok {
			observability.PageCacheHits.Inc()
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, etlerr.Network("build request", err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, etlerr.Network("GET "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, etlerr.Network("GET "+url, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, etlerr.Network("read "+url, err)
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, url, body); err != nil {
			slog.Debug("page cache store failed", "url", url, "err", err)
		}
	}
	return body, nil
}

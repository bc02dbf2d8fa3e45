package crawler

import (
	"context"
	"log/slog"

	"fashionetl/internal/model"
)

// ScrapeAll walks the configured page range in order, one request at a time,
// and concatenates whatever each page produced. Failed or empty pages are
// skipped.
func (e *Extractor) ScrapeAll(ctx context.Context) []model.RawProduct {
	var all []model.RawProduct

	for page := e.cfg.PageStart; page <= e.cfg.PageEnd; page++ {
		slog.Info("scraping page", "page", page, "of", e.cfg.PageEnd)

		products := e.FetchPage(ctx, page)
		if len(products) == 0 {
			continue
		}
		all = append(all, products...)
	}

	slog.Info("scrape finished", "products", len(all))
	return all
}

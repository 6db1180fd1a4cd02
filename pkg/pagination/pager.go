package pagination

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for pagination operations.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tidal_pages_fetched_total",
		Help: "Total paginated pages fetched",
	})

	collectionsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tidal_collections_fetched_total",
		Help: "Total full-collection fetches completed",
	})
)

// DefaultPageSize is the largest page the API reliably serves.
const DefaultPageSize = 100

// PageFunc fetches one page of a collection and returns its parsed items.
// offset is the index of the first item requested, limit the page size.
type PageFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// Config holds pager configuration.
type Config struct {
	// PageSize is the number of items requested per page.
	PageSize int
}

// DefaultConfig returns the standard pager configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: DefaultPageSize,
	}
}

// Pager drives a full-collection fetch over an offset/limit cursor.
type Pager[T any] struct {
	fetch  PageFunc[T]
	config Config
}

// New creates a pager around a single-page fetch function.
func New[T any](fetch PageFunc[T], config Config) *Pager[T] {
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	return &Pager[T]{
		fetch:  fetch,
		config: config,
	}
}

// FetchAll fetches pages starting at offset 0 until a page yields fewer
// items than the page size, and returns all items in request order. A final
// partial or empty page is a normal termination, not an error. A failed
// page aborts the whole fetch.
func (p *Pager[T]) FetchAll(ctx context.Context) ([]T, error) {
	size := p.config.PageSize
	var items []T

	for offset, pages := 0, 0; ; offset, pages = offset+size, pages+1 {
		page, err := p.fetch(ctx, offset, size)
		if err != nil {
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}

		items = append(items, page...)
		pagesFetchedTotal.Inc()

		log.Debug().
			Int("offset", offset).
			Int("page_items", len(page)).
			Int("total_items", len(items)).
			Msg("Page fetched")

		if len(page) < size {
			collectionsFetchedTotal.Inc()
			log.Debug().
				Int("pages", pages+1).
				Int("items", len(items)).
				Msg("Collection fetch complete")
			return items, nil
		}
	}
}

// FetchAll is a convenience wrapper that runs a one-shot pager with the
// default configuration.
func FetchAll[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	return New(fetch, DefaultConfig()).FetchAll(ctx)
}

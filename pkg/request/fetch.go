package request

import (
	"context"
	"fmt"
	"net/http"

	"github.com/streamkit/go-tidal/pkg/envelope"
	"github.com/streamkit/go-tidal/pkg/pagination"
)

// Free functions rather than methods: Go methods cannot introduce type
// parameters, and the parser's result type varies per call site.

// Get issues one GET, detects the envelope shape and parses the result.
// Single-object bodies yield a one-element slice, list bodies one element
// per item in API order.
func Get[T any](ctx context.Context, c *Client, path string, params Params, parse envelope.Parser[T]) ([]T, error) {
	return GetWithRegistry(ctx, c, path, params, parse, nil)
}

// GetWithRegistry is Get with per-element parser dispatch for mixed-type
// wrapped lists (favorites, search results). Elements are routed through
// registry by their "type" tag; parse is used when registry is nil.
func GetWithRegistry[T any](ctx context.Context, c *Client, path string, params Params, parse envelope.Parser[T], registry envelope.Registry[T]) ([]T, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, params, nil, nil)
	if err != nil {
		return nil, err
	}
	body, err := resp.JSON()
	if err != nil {
		return nil, err
	}
	return envelope.Map(body, parse, registry)
}

// GetOne fetches a single-object endpoint.
func GetOne[T any](ctx context.Context, c *Client, path string, params Params, parse envelope.Parser[T]) (T, error) {
	var zero T
	items, err := Get(ctx, c, path, params, parse)
	if err != nil {
		return zero, err
	}
	if len(items) != 1 {
		return zero, fmt.Errorf("%w: got %d", ErrNotSingleObject, len(items))
	}
	return items[0], nil
}

// GetItems assembles a full collection from a paginated endpoint. The API
// caps single requests at 100 items regardless of the requested limit, so
// pages of 100 are fetched until a short page signals the end.
func GetItems[T any](ctx context.Context, c *Client, path string, parse envelope.Parser[T]) ([]T, error) {
	return GetItemsWithRegistry(ctx, c, path, parse, nil)
}

// GetItemsWithRegistry is GetItems with per-element parser dispatch, for
// paginated mixed-type collections.
func GetItemsWithRegistry[T any](ctx context.Context, c *Client, path string, parse envelope.Parser[T], registry envelope.Registry[T]) ([]T, error) {
	fetch := func(ctx context.Context, offset, limit int) ([]T, error) {
		params := Params{"offset": offset, "limit": limit}
		return GetWithRegistry(ctx, c, path, params, parse, registry)
	}
	return pagination.FetchAll(ctx, fetch)
}

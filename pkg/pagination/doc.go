// Package pagination assembles full collections from offset/limit paginated
// TIDAL endpoints.
//
// The API caps a single request at 100 items and does not report a reliable
// total count, so the pager issues fixed-size pages sequentially and stops
// at the first page that comes back short (fewer parsed items than the page
// size, including zero).
//
// Example usage:
//
//	pager := pagination.New(fetchPage, pagination.DefaultConfig())
//	tracks, err := pager.FetchAll(ctx)
//
// The pager:
//   - Starts at offset 0 with the configured page size (default 100)
//   - Appends each page's items in request order
//   - Advances the offset by the page size after every full page
//   - Terminates strictly on the first short or empty page
//   - Aborts the whole fetch on the first failed page
//
// Pages are causally independent except through the offset counter, but
// they are issued sequentially: the stop-at-first-short-page rule would
// otherwise require speculative fetch-and-discard.
package pagination

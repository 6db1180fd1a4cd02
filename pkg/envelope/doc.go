// Package envelope normalizes the JSON response envelopes returned by the
// TIDAL API into typed domain values.
//
// List endpoints return one of three layouts:
//
//   - Flat list: {"items": [<object>, ...]}
//   - Wrapped list: {"items": [{"item": <object>, "created": ..., "type": ...}, ...]}
//     where the real object lives one level deeper and per-element metadata
//     sits next to it
//   - Single object: no "items" key, the whole body is the object
//
// Detection is a single decision per response: presence of "items" routes to
// a list shape (wrapped when the first element carries an "item" key), its
// absence to the single-object shape.
//
// For wrapped lists the "created" timestamp, when present on an element, is
// copied into that element's nested object under "dateAdded". The copy is a
// pure transformation producing a new object; input JSON is never mutated.
//
// Example usage:
//
//	parseTrack := func(obj map[string]any) (Track, error) { ... }
//	tracks, err := envelope.Map(body, parseTrack, nil)
//
// Mixed-type lists (favorites, search results) dispatch per element through
// a Registry keyed by the element's lower-cased, pluralized "type" tag:
//
//	reg := envelope.Registry[Media]{
//		"tracks": parseTrack,
//		"videos": parseVideo,
//	}
//	media, err := envelope.Map(body, nil, reg)
package envelope

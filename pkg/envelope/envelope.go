package envelope

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrParserRequired is returned when a response requires a parser and the
// caller supplied none. This is a programmer error, not an API condition.
var ErrParserRequired = errors.New("a parser must be supplied")

// Parser converts one decoded JSON object into one domain value.
type Parser[T any] func(obj map[string]any) (T, error)

// Registry maps a type tag (lower-cased, pluralized, e.g. "tracks") to the
// parser for that type. It drives per-element dispatch for wrapped lists
// that mix types, such as favorites and search results.
type Registry[T any] map[string]Parser[T]

// Shape identifies the envelope layout of a decoded response body.
type Shape int

const (
	// ShapeSingle is a body without an "items" key; the whole body is the
	// domain object.
	ShapeSingle Shape = iota

	// ShapeFlat is {"items": [<object>, ...]}.
	ShapeFlat

	// ShapeWrapped is {"items": [{"item": <object>, ...metadata}, ...]}.
	ShapeWrapped
)

// String returns a readable name for the shape, for logs and errors.
func (s Shape) String() string {
	switch s {
	case ShapeSingle:
		return "single"
	case ShapeFlat:
		return "flat"
	case ShapeWrapped:
		return "wrapped"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Detect classifies the envelope layout of body. The decision is made
// exactly once per response: an "items" key routes to a list shape, and a
// list is wrapped when its first element carries an "item" key.
func Detect(body map[string]any) Shape {
	items, ok := body["items"]
	if !ok {
		return ShapeSingle
	}
	list, _ := items.([]any)
	if len(list) > 0 {
		if first, ok := list[0].(map[string]any); ok {
			if _, ok := first["item"]; ok {
				return ShapeWrapped
			}
		}
	}
	return ShapeFlat
}

// Map normalizes body and parses it into domain values.
//
// Single-object bodies are parsed once as a whole and returned as a
// one-element slice. Flat lists are parsed element by element in order.
// Wrapped lists are normalized first (see Normalize) and then parsed, using
// registry for per-element dispatch when supplied, otherwise parse.
//
// An empty "items" list returns an empty slice; the parser is never invoked
// for it.
func Map[T any](body map[string]any, parse Parser[T], registry Registry[T]) ([]T, error) {
	switch Detect(body) {
	case ShapeSingle:
		if parse == nil {
			return nil, ErrParserRequired
		}
		v, err := parse(body)
		if err != nil {
			return nil, fmt.Errorf("parse object: %w", err)
		}
		return []T{v}, nil
	case ShapeWrapped:
		return mapWrapped(body, parse, registry)
	default:
		return mapFlat(body, parse)
	}
}

func mapFlat[T any](body map[string]any, parse Parser[T]) ([]T, error) {
	if parse == nil {
		return nil, ErrParserRequired
	}
	list, _ := body["items"].([]any)
	out := make([]T, 0, len(list))
	for i, raw := range list {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d: expected object, got %T", i, raw)
		}
		v, err := parse(obj)
		if err != nil {
			return nil, fmt.Errorf("parse item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func mapWrapped[T any](body map[string]any, parse Parser[T], registry Registry[T]) ([]T, error) {
	list, _ := body["items"].([]any)
	out := make([]T, 0, len(list))
	for i, raw := range list {
		elem, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d: expected object, got %T", i, raw)
		}
		obj, err := Normalize(elem)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		p := parse
		if registry != nil {
			tag, _ := elem["type"].(string)
			rp, ok := registry[TypeTag(tag)]
			if !ok {
				return nil, fmt.Errorf("item %d: no parser registered for type %q", i, tag)
			}
			p = rp
		}
		if p == nil {
			return nil, ErrParserRequired
		}

		v, err := p(obj)
		if err != nil {
			return nil, fmt.Errorf("parse item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Normalize re-homes the metadata of one wrapped-list element into its
// nested object. The "created" timestamp, when present, is copied into the
// result under "dateAdded", matching how the API reports it for playlist
// tracks. The returned object is a fresh copy; neither elem nor its nested
// object is mutated.
func Normalize(elem map[string]any) (map[string]any, error) {
	inner, ok := elem["item"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("wrapped element has no nested object under %q", "item")
	}
	out := lo.Assign(inner)
	if created, ok := elem["created"]; ok {
		out["dateAdded"] = created
	}
	return out, nil
}

// TypeTag converts an element's "type" field into a registry key: the
// lower-cased value with a plural "s" appended ("TRACK" -> "tracks").
func TypeTag(typeName string) string {
	return strings.ToLower(typeName) + "s"
}

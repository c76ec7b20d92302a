package cachediff

import (
	"reflect"
	"sync"

	"github.com/layerstore/cachediff/pkg/schema"
)

// Differ is the capability a record type can implement to take over diff
// generation entirely, e.g. to compare two fields jointly or apply
// equivalence logic the field-by-field walk cannot express.
//
// The contract matches the derived behavior: entries in a fixed order, an
// empty result meaning "equivalent, keep the cache", and errors only when
// producing an entry genuinely fails.
type Differ[T any] interface {
	CacheDiff(old T) ([]string, error)
}

// --- Types ---

// Schema is the reusable field descriptor list for a record type.
type Schema[T any] = schema.Schema[T]

// Option configures schema derivation.
type Option[T any] = schema.Option[T]

// RenderFunc converts a field value to its printable form.
type RenderFunc = schema.RenderFunc

// --- Configuration ---

// Rename sets the display name used for a field in diff output.
func Rename[T any](field, name string) Option[T] {
	return schema.Rename[T](field, name)
}

// Ignore excludes a field from comparison.
func Ignore[T any](field string) Option[T] {
	return schema.Ignore[T](field)
}

// Display sets a custom renderer for a field's values.
func Display[T any](field string, fn RenderFunc) Option[T] {
	return schema.Display[T](field, fn)
}

// --- Operations ---

// Diff compares two instances of the same record type and returns one
// entry per changed field, in field declaration order. An empty result
// means the cache backed by these descriptors is still valid.
//
// If T implements Differ, its CacheDiff is used verbatim. Otherwise the
// schema is derived from T's struct tags on first use and cached for the
// life of the process; definition problems in T surface here as errors.
func Diff[T any](now, old T) ([]string, error) {
	if d, ok := any(now).(Differ[T]); ok {
		return d.CacheDiff(old)
	}
	s, err := derived[T]()
	if err != nil {
		return nil, err
	}
	return s.Diff(now, old)
}

// Derive builds a schema for T explicitly, for callers that configure
// fields with options rather than struct tags. The result is immutable
// and safe to share.
func Derive[T any](opts ...Option[T]) (*Schema[T], error) {
	return schema.Derive[T](opts...)
}

// MustDerive is like Derive but panics on definition errors.
func MustDerive[T any](opts ...Option[T]) *Schema[T] {
	return schema.MustDerive[T](opts...)
}

// derivedSchemas caches the tag-only schema per record type. Schemas are
// fixed at definition time, so one derivation per type serves every
// subsequent Diff call. Derivation errors are not cached; they are cheap
// to recompute and rare.
var derivedSchemas sync.Map // reflect.Type -> *schema.Schema[T]

func derived[T any]() (*Schema[T], error) {
	t := reflect.TypeFor[T]()
	if v, ok := derivedSchemas.Load(t); ok {
		return v.(*Schema[T]), nil
	}
	s, err := schema.Derive[T]()
	if err != nil {
		return nil, err
	}
	v, _ := derivedSchemas.LoadOrStore(t, s)
	return v.(*Schema[T]), nil
}

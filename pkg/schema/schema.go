// Package schema holds the field descriptor model and the comparison
// engine behind cache diffing.
//
// A Schema is an ordered, immutable description of which fields of a
// record type participate in diffing and how each one is named and
// rendered. Schemas are built once per record type, either by reflection
// over struct tags (Derive) or through the explicit Builder, and are then
// reused for every comparison. All configuration problems are reported at
// build time; a built schema's Diff never fails unless a custom renderer
// does.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Schema is the immutable field descriptor list for record type T,
// together with the comparison engine that walks it.
//
// A Schema is safe for concurrent use: Diff reads only its two inputs and
// the descriptor list, and allocates a fresh result per call.
type Schema[T any] struct {
	fields   []Field[T]
	fmtValue func(string) string
}

// Fields returns the descriptors in declaration order, ignored fields
// included. The returned slice is a copy.
func (s *Schema[T]) Fields() []Field[T] {
	return append([]Field[T](nil), s.fields...)
}

// Len reports the number of descriptors, ignored fields included.
func (s *Schema[T]) Len() int {
	return len(s.fields)
}

// Diff compares two instances of the record type and returns one entry per
// included field whose values differ, in field declaration order. An empty
// result means the two records are equivalent for caching purposes.
//
// Entries have the shape "name (`old` to `now`)". Neither input is
// mutated; equality is per-field, never on the record as a whole.
func (s *Schema[T]) Diff(now, old T) ([]string, error) {
	var differences []string
	for _, f := range s.fields {
		if f.Ignored {
			continue
		}
		oldValue := f.get(old)
		nowValue := f.get(now)
		if reflect.DeepEqual(oldValue, nowValue) {
			continue
		}

		oldText, err := f.Render(oldValue)
		if err != nil {
			return nil, fmt.Errorf("rendering old value of %s: %w", f.SourceName, err)
		}
		nowText, err := f.Render(nowValue)
		if err != nil {
			return nil, fmt.Errorf("rendering new value of %s: %w", f.SourceName, err)
		}

		differences = append(differences, fmt.Sprintf("%s (%s to %s)",
			f.DisplayName, s.fmtValue(oldText), s.fmtValue(nowText)))
	}
	return differences, nil
}

// humanize derives the default display name from a field identifier:
// camel-case word breaks become spaces, underscores become spaces, and the
// result is lower-cased. "RubyVersion" and "ruby_version" both come out as
// "ruby version".
func humanize(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		if r == '_' {
			b.WriteRune(' ')
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			acronymEnd := unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || acronymEnd {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// tagName is the struct tag key read by Derive.
const tagName = "cachediff"

// tagAttrs is the parsed form of one `cachediff:"..."` tag.
type tagAttrs struct {
	rename  string
	display string
	ignore  bool
}

// Derive builds the schema for struct type T by walking its exported
// fields in declaration order. Per-field configuration comes from the
// `cachediff` struct tag and from opts; options win over tags.
//
// Tag options are `rename=<text>`, `ignore` and `display=<name>`, where
// <name> selects a renderer registered with RegisterRenderer. Any other
// option is a definition error. A tag on an unexported field is an error
// too; untagged unexported fields are skipped.
//
// Options within a tag are separated by commas, so a rename value cannot
// itself contain one; display names with commas need the Rename option
// instead.
func Derive[T any](opts ...Option[T]) (*Schema[T], error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %s", ErrNotStruct, t)
	}
	cfg := newConfig[T](opts)

	known := make(map[string]bool, t.NumField())
	fields := make([]Field[T], 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, tagged := sf.Tag.Lookup(tagName)
		if !sf.IsExported() {
			if tagged {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnexportedField, t, sf.Name)
			}
			continue
		}
		known[sf.Name] = true

		attrs, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t, sf.Name, err)
		}

		f := Field[T]{
			SourceName:  sf.Name,
			DisplayName: humanize(sf.Name),
			Ignored:     attrs.ignore || cfg.ignored[sf.Name],
		}
		if attrs.rename != "" {
			f.DisplayName = attrs.rename
		}
		if name, ok := cfg.renames[sf.Name]; ok {
			f.DisplayName = name
		}

		index := i
		f.get = func(record T) any {
			return reflect.ValueOf(record).Field(index).Interface()
		}

		if !f.Ignored {
			f.Render, err = resolveRenderer(sf.Type, attrs.display, cfg.displays[sf.Name])
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", t, sf.Name, err)
			}
		}
		fields = append(fields, f)
	}

	for name := range cfg.fieldNames() {
		if !known[name] {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, t, name)
		}
	}

	return &Schema[T]{fields: fields, fmtValue: cfg.fmtValue}, nil
}

// MustDerive is like Derive but panics on definition errors. Intended for
// package-level schema variables, where a bad definition should fail at
// startup.
func MustDerive[T any](opts ...Option[T]) *Schema[T] {
	s, err := Derive[T](opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// resolveRenderer picks the renderer for an included field: the explicit
// option, then the tag-registered one, then the type's natural form, then
// the built-in adapters. A field with none of these cannot be part of a
// schema.
func resolveRenderer(t reflect.Type, tagDisplay string, optDisplay RenderFunc) (RenderFunc, error) {
	if optDisplay != nil {
		return optDisplay, nil
	}
	if tagDisplay != "" {
		fn, ok := lookupRenderer(tagDisplay)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, tagDisplay)
		}
		return fn, nil
	}
	fn, ok := defaultRenderer(t)
	if !ok {
		return nil, fmt.Errorf("%w: type %s", ErrNoTextualForm, t)
	}
	return fn, nil
}

func parseTag(tag string) (tagAttrs, error) {
	var attrs tagAttrs
	if tag == "" {
		return attrs, nil
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		switch key {
		case "rename":
			if !hasValue || value == "" {
				return attrs, fmt.Errorf("rename requires a value, e.g. `rename=Ruby version`")
			}
			attrs.rename = value
		case "display":
			if !hasValue || value == "" {
				return attrs, fmt.Errorf("display requires a renderer name, e.g. `display=path`")
			}
			attrs.display = value
		case "ignore":
			if hasValue {
				return attrs, fmt.Errorf("ignore takes no value")
			}
			attrs.ignore = true
		default:
			return attrs, fmt.Errorf("%w: `%s`. Must be one of `rename`, `display`, `ignore`", ErrUnknownOption, key)
		}
	}
	return attrs, nil
}

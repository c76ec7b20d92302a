package schema

import "fmt"

// Builder constructs a schema by explicit registration instead of
// reflection. It serves record types whose fields are not struct fields:
// ordered snapshots, wrappers around maps, generated records.
//
// Field order is registration order. Configuration uses the same options
// as Derive, matched by the registered field names.
type Builder[T any] struct {
	cfg    *config[T]
	fields []Field[T]
	seen   map[string]bool
	err    error
}

// NewBuilder returns an empty builder configured with opts.
func NewBuilder[T any](opts ...Option[T]) *Builder[T] {
	return &Builder[T]{
		cfg:  newConfig[T](opts),
		seen: make(map[string]bool),
	}
}

// Field registers the next field with its value extractor. Registering the
// same name twice is a definition error, reported by Build.
//
// Registered fields have no static type to inspect, so without a Display
// option they fall back to the fmt package's default formatting, which
// renders any value. Returns the builder for chaining.
func (b *Builder[T]) Field(name string, get func(record T) any) *Builder[T] {
	if b.err != nil {
		return b
	}
	if b.seen[name] {
		b.err = fmt.Errorf("%w: %q", ErrDuplicateField, name)
		return b
	}
	b.seen[name] = true

	f := Field[T]{
		SourceName:  name,
		DisplayName: humanize(name),
		Ignored:     b.cfg.ignored[name],
		get:         get,
	}
	if rename, ok := b.cfg.renames[name]; ok {
		f.DisplayName = rename
	}
	if !f.Ignored {
		if fn, ok := b.cfg.displays[name]; ok {
			f.Render = fn
		} else {
			f.Render = renderNatural
		}
	}
	b.fields = append(b.fields, f)
	return b
}

// Build validates the accumulated registrations and returns the schema.
func (b *Builder[T]) Build() (*Schema[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	for name := range b.cfg.fieldNames() {
		if !b.seen[name] {
			return nil, fmt.Errorf("%w: no field %q registered", ErrUnknownField, name)
		}
	}
	return &Schema[T]{fields: b.fields, fmtValue: b.cfg.fmtValue}, nil
}

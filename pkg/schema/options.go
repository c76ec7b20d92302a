package schema

// Option configures schema construction for record type T. Options are the
// programmatic counterpart of the `cachediff` struct tag and take
// precedence over it.
type Option[T any] func(c *config[T])

// config accumulates per-field configuration before it is validated
// against the record type's actual fields.
type config[T any] struct {
	renames  map[string]string
	ignored  map[string]bool
	displays map[string]RenderFunc
	fmtValue func(string) string
}

func newConfig[T any](opts []Option[T]) *config[T] {
	c := &config[T]{
		renames:  make(map[string]string),
		ignored:  make(map[string]bool),
		displays: make(map[string]RenderFunc),
		fmtValue: backtick,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fieldNames returns every field name the configuration touches, so schema
// construction can reject options aimed at fields the type does not have.
func (c *config[T]) fieldNames() map[string]bool {
	names := make(map[string]bool, len(c.renames)+len(c.ignored)+len(c.displays))
	for n := range c.renames {
		names[n] = true
	}
	for n := range c.ignored {
		names[n] = true
	}
	for n := range c.displays {
		names[n] = true
	}
	return names
}

// Rename sets the display name used for a field in diff output.
func Rename[T any](field, name string) Option[T] {
	return func(c *config[T]) {
		c.renames[field] = name
	}
}

// Ignore excludes a field from comparison. Ignore wins over everything
// else: renaming or setting a display on an ignored field is inert, not an
// error.
func Ignore[T any](field string) Option[T] {
	return func(c *config[T]) {
		c.ignored[field] = true
	}
}

// Display sets a custom renderer for a field's values.
func Display[T any](field string, fn RenderFunc) Option[T] {
	return func(c *config[T]) {
		c.displays[field] = fn
	}
}

// WithValueFormat replaces the formatting applied to every rendered value
// before it is placed in a diff entry. The default wraps values in
// backticks.
func WithValueFormat[T any](fn func(string) string) Option[T] {
	return func(c *config[T]) {
		c.fmtValue = fn
	}
}

func backtick(s string) string {
	return "`" + s + "`"
}

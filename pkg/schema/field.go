package schema

// RenderFunc converts a single field value into its printable form.
// Returning an error aborts the diff that needed the value; built-in
// renderers never fail.
type RenderFunc func(v any) (string, error)

// Field describes one comparable field of a record type.
//
// Fields are held by a Schema in declaration order; that order alone
// determines the order of diff output. Ignored fields keep their slot so
// positions stay stable, but are never inspected or reported.
type Field[T any] struct {
	// SourceName is the field's identifier in the record type.
	SourceName string

	// DisplayName is the name used in diff output. Defaults to the
	// humanized SourceName, overridden by rename configuration.
	DisplayName string

	// Ignored marks the field as excluded from comparison entirely.
	Ignored bool

	// Render produces the printable form of the field's value.
	Render RenderFunc

	get func(record T) any
}

// Value extracts this field's value from a record instance.
func (f Field[T]) Value(record T) any {
	return f.get(record)
}

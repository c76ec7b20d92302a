package schema

import "errors"

// Definition errors. All of these surface when a schema is built, never
// while a diff is running.
var (
	ErrNotStruct       = errors.New("record type must be a struct")
	ErrUnknownOption   = errors.New("unknown cachediff attribute")
	ErrUnknownField    = errors.New("option references unknown field")
	ErrUnknownRenderer = errors.New("unknown display renderer")
	ErrNoTextualForm   = errors.New("field has no textual form and no display renderer")
	ErrUnexportedField = errors.New("cachediff tag on unexported field")
	ErrDuplicateField  = errors.New("field registered more than once")
)

package schema

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

var (
	stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	bytesType    = reflect.TypeOf([]byte(nil))
)

// renderers is the named renderer registry used by `display=<name>` struct
// tags. Tags are plain strings, so they select renderers by name; the
// Display option takes the function value directly.
var renderers = struct {
	sync.RWMutex
	m map[string]RenderFunc
}{
	m: map[string]RenderFunc{
		"path":  DisplayPath,
		"hex":   DisplayHex,
		"quote": DisplayQuote,
	},
}

// RegisterRenderer makes fn available to `display=<name>` struct tags.
// Registering a name twice replaces the earlier function. Registration is
// expected to happen during package initialization, before schemas are
// derived.
func RegisterRenderer(name string, fn RenderFunc) {
	renderers.Lock()
	defer renderers.Unlock()
	renderers.m[name] = fn
}

func lookupRenderer(name string) (RenderFunc, bool) {
	renderers.RLock()
	defer renderers.RUnlock()
	fn, ok := renderers.m[name]
	return fn, ok
}

// DisplayPath renders a filesystem path held as raw bytes or as a string
// kind. Raw platform paths are not guaranteed to be valid UTF-8, so byte
// paths are sanitized before display.
func DisplayPath(v any) (string, error) {
	switch p := v.(type) {
	case []byte:
		return strings.ToValidUTF8(string(p), "�"), nil
	case string:
		return p, nil
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return "", fmt.Errorf("cannot render %T as a path", v)
}

// DisplayHex renders a byte slice (digests, content hashes) as lowercase hex.
func DisplayHex(v any) (string, error) {
	switch b := v.(type) {
	case []byte:
		return hex.EncodeToString(b), nil
	case string:
		return hex.EncodeToString([]byte(b)), nil
	}
	return "", fmt.Errorf("cannot render %T as hex", v)
}

// DisplayQuote renders a value in quoted Go syntax, making whitespace and
// control characters visible.
func DisplayQuote(v any) (string, error) {
	return strconv.Quote(fmt.Sprintf("%v", v)), nil
}

// renderNatural handles values whose type has an intrinsic textual form.
// The fmt package already prefers String() and Error() methods.
func renderNatural(v any) (string, error) {
	return fmt.Sprintf("%v", v), nil
}

// defaultRenderer resolves the renderer for a field of static type t when
// no explicit one was configured. The second return is false when the type
// has no textual form, which is a definition error for included fields.
func defaultRenderer(t reflect.Type) (RenderFunc, bool) {
	if t.Implements(stringerType) || t.Implements(errorType) {
		return renderNatural, true
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return renderNatural, true
	}
	if t == bytesType {
		// Raw byte slices are how paths without a printable form travel;
		// they get the path display conversion automatically.
		return DisplayPath, true
	}
	return nil, false
}

// Package cachediff generates clean, human readable diffs between two
// instances of a cache descriptor struct.
//
// Build systems keep a serialized struct describing what a cached artifact
// was built from. When a freshly computed descriptor no longer matches the
// stored one, the cache must be invalidated, and the user deserves to know
// why. Diff compares the two descriptors field by field and returns one
// entry per changed field, in declaration order:
//
//	type Metadata struct {
//		Version string
//		Distro  string
//	}
//
//	diff, _ := cachediff.Diff(
//		Metadata{Version: "3.4.0", Distro: "Ubuntu"},
//		Metadata{Version: "3.3.0", Distro: "Alpine"},
//	)
//	// diff = ["version (`3.3.0` to `3.4.0`)", "distro (`Alpine` to `Ubuntu`)"]
//
// An empty result means the two descriptors are equivalent and the cache
// can be kept.
//
// Per-field behavior is configured with the `cachediff` struct tag:
//
//   - `cachediff:"rename=Ruby version"` names the field in output
//   - `cachediff:"ignore"` excludes the field from comparison
//   - `cachediff:"display=path"` renders values with a named renderer
//     (see schema.RegisterRenderer)
//
// or with the equivalent functional options on Derive. Field equality is
// per field; the struct as a whole never needs to be comparable. Types
// that want full control implement Differ themselves and are treated
// identically by Diff.
//
// The engine is pure: no I/O, no shared state, safe for concurrent use.
// Supporting packages under pkg/ cover snapshot files on disk
// (pkg/snapshot) and the descriptor model itself (pkg/schema).
package cachediff

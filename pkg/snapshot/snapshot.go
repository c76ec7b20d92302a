// Package snapshot reads cache descriptor files from disk and explains how
// they changed.
//
// A snapshot is the serialized form of a cache descriptor: a YAML mapping
// of field names to values. Unlike a plain map, a Snapshot remembers the
// order keys appear in the document, so diffs come out in the order the
// descriptor declares its fields, exactly like the struct-based engine.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/layerstore/cachediff/pkg/schema"
)

// Snapshot is one parsed descriptor file: an insertion-ordered set of
// key/value pairs. Values carry the usual YAML scalar and collection
// types.
type Snapshot struct {
	// Path is the file the snapshot was loaded from, empty for Parse.
	Path string

	keys   []string
	values map[string]any
}

// Parse decodes a YAML mapping into a Snapshot, preserving document key
// order. An empty document yields an empty snapshot.
func Parse(data []byte) (*Snapshot, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	s := &Snapshot{values: make(map[string]any)}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return s, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("snapshot root must be a mapping, got %s", nodeKind(root.Kind))
	}

	// Mapping nodes alternate key and value entries.
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		var value any
		if err := valueNode.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to decode value of %q: %w", keyNode.Value, err)
		}
		key := keyNode.Value
		if _, exists := s.values[key]; !exists {
			s.keys = append(s.keys, key)
		}
		s.values[key] = value
	}
	return s, nil
}

// Load reads and parses a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Keys returns the snapshot's keys in document order. The slice is a copy.
func (s *Snapshot) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Get returns the value stored under key.
func (s *Snapshot) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len reports the number of keys.
func (s *Snapshot) Len() int {
	return len(s.keys)
}

// Changed compares two snapshots and returns one entry per key whose value
// differs, in the old snapshot's key order with new-only keys appended. A
// key present on one side only diffs against null.
//
// An empty result means the stored artifact is still valid.
func Changed(now, old *Snapshot) ([]string, error) {
	keys := old.Keys()
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range now.Keys() {
		if !seen[k] {
			keys = append(keys, k)
		}
	}

	opts := make([]schema.Option[*Snapshot], 0, len(keys))
	for _, k := range keys {
		opts = append(opts, schema.Display[*Snapshot](k, renderValue))
	}

	b := schema.NewBuilder[*Snapshot](opts...)
	for _, k := range keys {
		key := k
		b.Field(key, func(s *Snapshot) any {
			v, _ := s.Get(key)
			return v
		})
	}
	built, err := b.Build()
	if err != nil {
		return nil, err
	}
	return built.Diff(now, old)
}

// renderValue prints YAML values: scalars verbatim, collections as compact
// JSON so an entry stays on one line.
func renderValue(v any) (string, error) {
	switch value := v.(type) {
	case nil:
		return "null", nil
	case string:
		return value, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprintf("%v", value), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		// Non-JSON-able values (binary keys and the like) still get a
		// readable, deterministic form.
		return fmt.Sprintf("%v", v), nil
	}
	return string(data), nil
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

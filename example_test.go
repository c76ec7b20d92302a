package cachediff_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/layerstore/cachediff"
)

// Metadata is a typical cache descriptor: it captures what a cached
// artifact was built from, so a change in any field explains an
// invalidation.
type Metadata struct {
	Version string
	Distro  string
}

// Example_basic compares two descriptors and prints what changed, in field
// declaration order.
func Example_basic() {
	diff, err := cachediff.Diff(
		Metadata{Version: "3.4.0", Distro: "Ubuntu"},
		Metadata{Version: "3.3.0", Distro: "Alpine"},
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(strings.Join(diff, ", "))
	// Output:
	// version (`3.3.0` to `3.4.0`), distro (`Alpine` to `Ubuntu`)
}

// Example_equivalent shows the cache-retention signal: an empty diff.
func Example_equivalent() {
	m := Metadata{Version: "3.4.0", Distro: "Ubuntu"}
	diff, err := cachediff.Diff(m, m)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(diff) == 0)
	// Output:
	// true
}

// Example_rename uses the struct tag to give a field a friendlier name.
func Example_rename() {
	type metadata struct {
		Version string `cachediff:"rename=Ruby version"`
	}

	diff, err := cachediff.Diff(
		metadata{Version: "3.4.0"},
		metadata{Version: "3.3.0"},
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(diff[0])
	// Output:
	// Ruby version (`3.3.0` to `3.4.0`)
}

// Example_ignore excludes bookkeeping fields from the comparison.
func Example_ignore() {
	type metadata struct {
		Version   string
		ChangedBy string `cachediff:"ignore"`
	}

	diff, err := cachediff.Diff(
		metadata{Version: "3.4.0", ChangedBy: "Alice"},
		metadata{Version: "3.4.0", ChangedBy: "Bob"},
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(diff) == 0)
	// Output:
	// true
}

// noDisplay has no natural textual form, so a renderer must be supplied.
type noDisplay struct {
	raw string
}

// ExampleDisplay supplies a custom renderer for a type the engine cannot
// print on its own.
func ExampleDisplay() {
	type metadata struct {
		Version noDisplay
	}

	schema, err := cachediff.Derive[metadata](
		cachediff.Display[metadata]("Version", func(v any) (string, error) {
			return "custom " + v.(noDisplay).raw, nil
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	diff, err := schema.Diff(
		metadata{Version: noDisplay{"3.4.0"}},
		metadata{Version: noDisplay{"3.3.0"}},
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(diff[0])
	// Output:
	// version (`custom 3.3.0` to `custom 3.4.0`)
}

// gemfileMetadata explains its own changes: the two fields only matter
// jointly, which the field-by-field walk cannot express.
type gemfileMetadata struct {
	RubyVersion  string
	ForcedJobs   int
	DetectedJobs int
}

func (m gemfileMetadata) CacheDiff(old gemfileMetadata) ([]string, error) {
	var diff []string
	if m.RubyVersion != old.RubyVersion {
		diff = append(diff, fmt.Sprintf("ruby version (`%s` to `%s`)", old.RubyVersion, m.RubyVersion))
	}
	if m.jobs() != old.jobs() {
		diff = append(diff, fmt.Sprintf("jobs (`%d` to `%d`)", old.jobs(), m.jobs()))
	}
	return diff, nil
}

func (m gemfileMetadata) jobs() int {
	if m.ForcedJobs > 0 {
		return m.ForcedJobs
	}
	return m.DetectedJobs
}

// ExampleDiffer shows a manual implementation: Diff uses it verbatim.
func ExampleDiffer() {
	diff, err := cachediff.Diff(
		gemfileMetadata{RubyVersion: "3.4.0", ForcedJobs: 4, DetectedJobs: 8},
		gemfileMetadata{RubyVersion: "3.4.0", ForcedJobs: 0, DetectedJobs: 8},
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(strings.Join(diff, ", "))
	// Output:
	// jobs (`8` to `4`)
}

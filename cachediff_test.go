package cachediff_test

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/layerstore/cachediff"
)

func TestDiff_TagDerived(t *testing.T) {
	type metadata struct {
		Version   string
		Distro    string
		ChangedBy string `cachediff:"ignore"`
	}

	old := metadata{Version: "3.3.0", Distro: "Alpine", ChangedBy: "Alice"}
	now := metadata{Version: "3.4.0", Distro: "Ubuntu", ChangedBy: "Bob"}

	diff, err := cachediff.Diff(now, old)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}

	want := []string{
		"version (`3.3.0` to `3.4.0`)",
		"distro (`Alpine` to `Ubuntu`)",
	}
	if !reflect.DeepEqual(diff, want) {
		t.Errorf("expected %q, got %q", want, diff)
	}
}

type manualRecord struct {
	A string
	B string
}

func (r manualRecord) CacheDiff(old manualRecord) ([]string, error) {
	if r == old {
		return nil, nil
	}
	return []string{"manual entry"}, nil
}

func TestDiff_ManualImplementationWins(t *testing.T) {
	diff, err := cachediff.Diff(
		manualRecord{A: "2", B: "2"},
		manualRecord{A: "1", B: "1"},
	)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}

	// The derived walk would report two entries; the manual one is used
	// instead.
	if len(diff) != 1 || diff[0] != "manual entry" {
		t.Errorf("expected the manual implementation's output, got %q", diff)
	}
}

type failingRecord struct {
	A string
}

var errManual = errors.New("cannot explain this change")

func (r failingRecord) CacheDiff(old failingRecord) ([]string, error) {
	return nil, errManual
}

func TestDiff_ManualErrorPropagates(t *testing.T) {
	_, err := cachediff.Diff(failingRecord{A: "2"}, failingRecord{A: "1"})
	if !errors.Is(err, errManual) {
		t.Errorf("expected the manual implementation's error, got %v", err)
	}
}

func TestDiff_DefinitionErrorSurfaces(t *testing.T) {
	type broken struct {
		Meta map[string]string
	}
	_, err := cachediff.Diff(broken{}, broken{})
	if err == nil {
		t.Fatalf("expected a definition error for an unrenderable field")
	}
	if !strings.Contains(err.Error(), "Meta") {
		t.Errorf("error should name the offending field, got %q", err)
	}
}

func TestDiff_SchemaCachedAcrossCalls(t *testing.T) {
	type metadata struct {
		Version string
	}
	old := metadata{Version: "1"}
	now := metadata{Version: "2"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				diff, err := cachediff.Diff(now, old)
				if err != nil || len(diff) != 1 {
					t.Errorf("cached diff wrong: %q, %v", diff, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestDerive_FacadeOptions(t *testing.T) {
	type metadata struct {
		Version   string
		ChangedBy string
	}

	schema, err := cachediff.Derive[metadata](
		cachediff.Rename[metadata]("Version", "Ruby version"),
		cachediff.Ignore[metadata]("ChangedBy"),
	)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	diff, err := schema.Diff(
		metadata{Version: "3.4.0", ChangedBy: "Bob"},
		metadata{Version: "3.3.0", ChangedBy: "Alice"},
	)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if len(diff) != 1 || diff[0] != "Ruby version (`3.3.0` to `3.4.0`)" {
		t.Errorf("unexpected diff: %q", diff)
	}
}

func TestVersion(t *testing.T) {
	if strings.TrimSpace(cachediff.Version) == "" {
		t.Errorf("embedded version must not be empty")
	}
}

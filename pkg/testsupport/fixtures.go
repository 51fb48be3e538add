package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

// MustLoadTemplate loads a JSON fixture into a Template.
func MustLoadTemplate(t *testing.T, path string) model.Template {
	t.Helper()

	tmpl, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	return tmpl
}

// LoadTemplate reads a JSON fixture into a Template, returning an error for
// callers managing setup outside of *testing.T.
func LoadTemplate(path string) (model.Template, error) {
	if path == "" {
		return model.Template{}, errors.New("testsupport: template path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Template{}, fmt.Errorf("testsupport: read template: %w", err)
	}
	var out model.Template
	if err := json.Unmarshal(data, &out); err != nil {
		return model.Template{}, fmt.Errorf("testsupport: unmarshal template: %w", err)
	}
	return out, nil
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertGolden compares data against the golden file at path, ignoring
// surrounding whitespace. With UPDATE_GOLDENS set the file is rewritten.
func AssertGolden(t *testing.T, path string, data []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, data) {
		return
	}
	want := string(bytes.TrimSpace(MustReadGolden(t, path)))
	got := string(bytes.TrimSpace(data))
	if diff := CompareGolden(want, got); diff != "" {
		t.Fatalf("golden mismatch for %s (-want +got):\n%s", path, diff)
	}
}

// MustMarshal encodes value as compact JSON.
func MustMarshal(t *testing.T, value any) string {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

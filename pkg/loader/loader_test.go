package loader_test

import (
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtemplate/pkg/loader"
	"github.com/goliatone/go-formtemplate/pkg/model"
)

func TestLoadFile_JSON(t *testing.T) {
	tmpl, err := loader.LoadFile(filepath.Join("testdata", "onboarding.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tmpl.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(tmpl.Pages))
	}
	file := tmpl.Pages[1].Fields[1]
	if file.Type != model.FieldTypeFile {
		t.Fatalf("expected file field, got %s", file.Type)
	}
	if diff := cmp.Diff([]string{".pdf", ".jpg"}, file.Accept); diff != "" {
		t.Fatalf("accept mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	tmpl, err := loader.LoadFile(filepath.Join("testdata", "onboarding.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	income := tmpl.Pages[1].Fields[0]
	if diff := cmp.Diff(map[string]any{"min": 0, "max": 100000}, income.Validation.Rules()); diff != "" {
		t.Fatalf("number rules mismatch (-want +got):\n%s", diff)
	}
	tier := tmpl.Pages[1].Fields[1]
	if diff := cmp.Diff([]string{"Silver", "Gold"}, tier.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{""}, tier.Accept); diff != "" {
		t.Fatalf("missing accept should default to one empty slot (-want +got):\n%s", diff)
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/min.yml": {Data: []byte("pages:\n  - title: Only\n    fields: []\n")},
	}
	tmpl, err := loader.LoadFS(fsys, "templates/min.yml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tmpl.Pages) != 1 || tmpl.Pages[0].Title != "Only" {
		t.Fatalf("unexpected template %#v", tmpl)
	}
	if _, err := loader.LoadFS(fsys, "missing.json"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := loader.Parse([]byte("  \n"), "blank.json"); !errors.Is(err, loader.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := loader.LoadFile(filepath.Join("testdata", "unknown_type.json")); !errors.Is(err, model.ErrUnknownFieldType) {
		t.Fatalf("expected ErrUnknownFieldType, got %v", err)
	}
	if _, err := loader.Parse([]byte("pages: [unterminated"), "broken.yaml"); err == nil {
		t.Fatalf("expected yaml syntax error")
	}
}

package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

func seed(t *testing.T, fieldsPerPage ...int) model.Template {
	t.Helper()
	tmpl := model.Template{Pages: []model.Page{}}
	for pageIdx, count := range fieldsPerPage {
		tmpl = AddPage(tmpl)
		for i := 0; i < count; i++ {
			var err error
			tmpl, err = AddField(tmpl, pageIdx)
			if err != nil {
				t.Fatalf("add field: %v", err)
			}
		}
	}
	return tmpl
}

func titles(tmpl model.Template) []string {
	out := make([]string, len(tmpl.Pages))
	for i, page := range tmpl.Pages {
		out[i] = page.Title
	}
	return out
}

func TestAddPage_TitlesFollowPosition(t *testing.T) {
	tmpl := seed(t, 0, 0, 0)
	want := []string{"Page 1", "Page 2", "Page 3"}
	if diff := cmp.Diff(want, titles(tmpl)); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
	for i, page := range tmpl.Pages {
		if page.Fields == nil || len(page.Fields) != 0 {
			t.Fatalf("page %d should start with an empty field list, got %#v", i, page.Fields)
		}
	}
}

func TestAddField_OnlyTargetPageGrows(t *testing.T) {
	base := seed(t, 1, 2, 0)
	for pageIdx := range base.Pages {
		next, err := AddField(base, pageIdx)
		if err != nil {
			t.Fatalf("add field on page %d: %v", pageIdx, err)
		}
		for i := range base.Pages {
			want := len(base.Pages[i].Fields)
			if i == pageIdx {
				want++
			}
			if got := len(next.Pages[i].Fields); got != want {
				t.Fatalf("page %d after AddField(%d): want %d fields, got %d", i, pageIdx, want, got)
			}
		}
	}
}

func TestAddField_Defaults(t *testing.T) {
	tmpl := seed(t, 1)
	got := tmpl.Pages[0].Fields[0]
	want := model.Field{
		Type:       model.FieldTypeText,
		Validation: model.TextValidation{},
		Options:    []string{""},
		Accept:     []string{""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("default field mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateField_TypeWriteResets(t *testing.T) {
	for _, from := range model.FieldTypes {
		for _, to := range model.FieldTypes {
			tmpl := seed(t, 1)
			tmpl = mustOp(t)(UpdateField(tmpl, 0, 0, model.AttrType, from))
			tmpl = mustOp(t)(AddArrayFieldItem(tmpl, 0, 0, model.ArrayKeyOptions))
			tmpl = mustOp(t)(UpdateArrayField(tmpl, 0, 0, model.ArrayKeyOptions, 1, "stale"))
			tmpl = mustOp(t)(UpdateArrayField(tmpl, 0, 0, model.ArrayKeyAccept, 0, ".pdf"))
			if from == model.FieldTypeNumber {
				tmpl = mustOp(t)(UpdateValidation(tmpl, 0, 0, model.RuleMin, 3))
			}
			if from == model.FieldTypeText {
				tmpl = mustOp(t)(UpdateValidation(tmpl, 0, 0, model.RuleRegex, "^a"))
			}

			tmpl = mustOp(t)(UpdateField(tmpl, 0, 0, model.AttrType, to))
			field := tmpl.Pages[0].Fields[0]
			if field.Type != to {
				t.Fatalf("%s->%s: type not written, got %s", from, to, field.Type)
			}
			if got := field.Validation.Rules(); len(got) != 0 {
				t.Fatalf("%s->%s: validation not reset: %#v", from, to, got)
			}
			if diff := cmp.Diff([]string{""}, field.Options); diff != "" {
				t.Fatalf("%s->%s: options not reset (-want +got):\n%s", from, to, diff)
			}
			if diff := cmp.Diff([]string{""}, field.Accept); diff != "" {
				t.Fatalf("%s->%s: accept not reset (-want +got):\n%s", from, to, diff)
			}
		}
	}
}

func TestUpdateField_Attributes(t *testing.T) {
	tmpl := seed(t, 1)
	tmpl = mustOp(t)(UpdateField(tmpl, 0, 0, model.AttrLabel, "Email"))
	tmpl = mustOp(t)(UpdateField(tmpl, 0, 0, model.AttrName, "email"))
	tmpl = mustOp(t)(UpdateField(tmpl, 0, 0, model.AttrRequired, true))

	field := tmpl.Pages[0].Fields[0]
	if field.Label != "Email" || field.Name != "email" || !field.Required {
		t.Fatalf("attributes not written: %#v", field)
	}

	cases := []struct {
		name  string
		key   string
		value any
		want  error
	}{
		{name: "unknown key", key: "placeholder", value: "x", want: ErrUnknownAttribute},
		{name: "label not string", key: model.AttrLabel, value: 3, want: ErrInvalidValue},
		{name: "required not bool", key: model.AttrRequired, value: "yes", want: ErrInvalidValue},
		{name: "unknown type", key: model.AttrType, value: "date", want: ErrUnknownFieldType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UpdateField(tmpl, 0, 0, tc.key, tc.value)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateValidation_PerTypeKeys(t *testing.T) {
	tmpl := seed(t, 1)
	tmpl = mustOp(t)(UpdateField(tmpl, 0, 0, model.AttrType, model.FieldTypeNumber))
	tmpl = mustOp(t)(UpdateValidation(tmpl, 0, 0, model.RuleMin, 1))
	tmpl = mustOp(t)(UpdateValidation(tmpl, 0, 0, model.RuleMax, 10.0))

	want := map[string]any{"min": 1, "max": 10}
	if diff := cmp.Diff(want, tmpl.Pages[0].Fields[0].Validation.Rules()); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}

	if _, err := UpdateValidation(tmpl, 0, 0, model.RuleRegex, "^x$"); !errors.Is(err, ErrValidationKey) {
		t.Fatalf("expected ErrValidationKey for regex on number, got %v", err)
	}

	cleared := mustOp(t)(UpdateValidation(tmpl, 0, 0, model.RuleMin, nil))
	if diff := cmp.Diff(map[string]any{"max": 10}, cleared.Pages[0].Fields[0].Validation.Rules()); diff != "" {
		t.Fatalf("nil should clear min (-want +got):\n%s", diff)
	}
}

func TestUpdateValidation_StoresMalformedValuesAsIs(t *testing.T) {
	tmpl := seed(t, 1)
	tmpl = mustOp(t)(UpdateField(tmpl, 0, 0, model.AttrType, model.FieldTypeNumber))
	tmpl = mustOp(t)(UpdateValidation(tmpl, 0, 0, model.RuleMin, "abc"))
	tmpl = mustOp(t)(UpdateValidation(tmpl, 0, 0, model.RuleMax, 2.5))

	want := map[string]any{"min": "abc", "max": 2.5}
	if diff := cmp.Diff(want, tmpl.Pages[0].Fields[0].Validation.Rules()); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}

	wantJSON := `{"pages":[{"title":"Page 1","fields":[{"label":"","name":"","type":"number","required":false,"validation":{"max":2.5,"min":"abc"},"options":[""],"accept":[""]}]}]}`
	if got := mustSerialize(t, tmpl); got != wantJSON {
		t.Fatalf("serialized mismatch\nwant %s\ngot  %s", wantJSON, got)
	}
}

func TestUpdateValidation_CreatesMissingVariant(t *testing.T) {
	tmpl := model.Template{Pages: []model.Page{{
		Title:  "Raw",
		Fields: []model.Field{{Type: model.FieldTypeText}},
	}}}
	next := mustOp(t)(UpdateValidation(tmpl, 0, 0, model.RuleRegex, "^[a-z]+$"))
	if diff := cmp.Diff(map[string]any{"regex": "^[a-z]+$"}, next.Pages[0].Fields[0].Validation.Rules()); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	if tmpl.Pages[0].Fields[0].Validation != nil {
		t.Fatalf("input template was mutated")
	}
}

func TestUpdateArrayField_NoAutoGrow(t *testing.T) {
	tmpl := seed(t, 1)
	if _, err := UpdateArrayField(tmpl, 0, 0, model.ArrayKeyOptions, 1, "Gold"); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex at len, got %v", err)
	}
	if _, err := UpdateArrayField(tmpl, 0, 0, model.ArrayKeyAccept, -1, ".png"); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex for negative index, got %v", err)
	}

	grown := mustOp(t)(AddArrayFieldItem(tmpl, 0, 0, model.ArrayKeyOptions))
	updated := mustOp(t)(UpdateArrayField(grown, 0, 0, model.ArrayKeyOptions, 1, "Gold"))
	if diff := cmp.Diff([]string{"", "Gold"}, updated.Pages[0].Fields[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{""}, tmpl.Pages[0].Fields[0].Options); diff != "" {
		t.Fatalf("original snapshot changed (-want +got):\n%s", diff)
	}
}

func TestArrayKey_Unknown(t *testing.T) {
	tmpl := seed(t, 1)
	if _, err := AddArrayFieldItem(tmpl, 0, 0, "tags"); !errors.Is(err, ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
	if _, err := UpdateArrayField(tmpl, 0, 0, "tags", 0, "x"); !errors.Is(err, ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
}

func TestReorderPages_RoundTrip(t *testing.T) {
	base := seed(t, 0, 0, 0, 0)
	for i := range base.Pages {
		for j := range base.Pages {
			if i == j {
				continue
			}
			moved := mustOp(t)(ReorderPages(base, i, j))
			if moved.Pages[j].Title != base.Pages[i].Title {
				t.Fatalf("ReorderPages(%d,%d): page %q not at destination", i, j, base.Pages[i].Title)
			}
			back := mustOp(t)(ReorderPages(moved, j, i))
			if diff := cmp.Diff(titles(base), titles(back)); diff != "" {
				t.Fatalf("ReorderPages(%d,%d) then (%d,%d) did not restore order (-want +got):\n%s", i, j, j, i, diff)
			}
		}
	}
}

func TestReorderPages_ShiftsBetween(t *testing.T) {
	base := seed(t, 0, 0, 0, 0)
	got := titles(mustOp(t)(ReorderPages(base, 0, 2)))
	want := []string{"Page 2", "Page 3", "Page 1", "Page 4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	got = titles(mustOp(t)(ReorderPages(base, 3, 1)))
	want = []string{"Page 1", "Page 4", "Page 2", "Page 3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestReorderFields_ScopedToPage(t *testing.T) {
	base := seed(t, 3, 1)
	for i, label := range []string{"a", "b", "c"} {
		base = mustOp(t)(UpdateField(base, 0, i, model.AttrLabel, label))
	}
	next := mustOp(t)(ReorderFields(base, 0, 2, 0))

	var got []string
	for _, field := range next.Pages[0].Fields {
		got = append(got, field.Label)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, got); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if len(next.Pages[1].Fields) != 1 {
		t.Fatalf("other page changed")
	}
	if base.Pages[0].Fields[0].Label != "a" {
		t.Fatalf("input template was mutated")
	}
}

func TestReorderFields_PageCheckedFirst(t *testing.T) {
	base := seed(t, 2)
	_, err := ReorderFields(base, 5, 0, 1)
	if !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
	if got := err.Error(); got != "engine: page index 5 out of range [0,1): engine: invalid index" {
		t.Fatalf("page index should be reported first, got %q", got)
	}
}

func TestUpdatePageTitle(t *testing.T) {
	base := seed(t, 1, 0)
	next := mustOp(t)(UpdatePageTitle(base, 1, "Payment"))
	if diff := cmp.Diff([]string{"Page 1", "Payment"}, titles(next)); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
	if base.Pages[1].Title != "Page 2" {
		t.Fatalf("input template modified")
	}
	if len(next.Pages[0].Fields) != 1 {
		t.Fatalf("other pages should be untouched")
	}
}

func TestDeletePage_ShiftsSuccessors(t *testing.T) {
	base := seed(t, 0, 1, 2, 3)
	for i := range base.Pages {
		next := mustOp(t)(DeletePage(base, i))
		if len(next.Pages) != len(base.Pages)-1 {
			t.Fatalf("DeletePage(%d): want %d pages, got %d", i, len(base.Pages)-1, len(next.Pages))
		}
		for k := range next.Pages {
			src := k
			if k >= i {
				src = k + 1
			}
			if next.Pages[k].Title != base.Pages[src].Title {
				t.Fatalf("DeletePage(%d): index %d holds %q, want %q", i, k, next.Pages[k].Title, base.Pages[src].Title)
			}
		}
	}
}

func TestDeleteField(t *testing.T) {
	base := seed(t, 2)
	base = mustOp(t)(UpdateField(base, 0, 1, model.AttrName, "second"))
	next := mustOp(t)(DeleteField(base, 0, 0))
	if len(next.Pages[0].Fields) != 1 || next.Pages[0].Fields[0].Name != "second" {
		t.Fatalf("unexpected fields after delete: %#v", next.Pages[0].Fields)
	}
	if len(base.Pages[0].Fields) != 2 {
		t.Fatalf("input template was mutated")
	}
}

func TestInvalidIndex_AllOperations(t *testing.T) {
	base := seed(t, 1)
	ops := map[string]func() (model.Template, error){
		"delete page":       func() (model.Template, error) { return DeletePage(base, 1) },
		"page title":        func() (model.Template, error) { return UpdatePageTitle(base, -1, "x") },
		"add field":         func() (model.Template, error) { return AddField(base, 1) },
		"delete field page": func() (model.Template, error) { return DeleteField(base, 1, 0) },
		"delete field":      func() (model.Template, error) { return DeleteField(base, 0, 1) },
		"update field":      func() (model.Template, error) { return UpdateField(base, 0, 2, model.AttrLabel, "x") },
		"update validation": func() (model.Template, error) { return UpdateValidation(base, 0, 1, model.RuleRegex, "x") },
		"array field":       func() (model.Template, error) { return UpdateArrayField(base, 0, 1, model.ArrayKeyOptions, 0, "x") },
		"array item":        func() (model.Template, error) { return AddArrayFieldItem(base, 2, 0, model.ArrayKeyAccept) },
		"reorder pages src": func() (model.Template, error) { return ReorderPages(base, 1, 0) },
		"reorder pages dst": func() (model.Template, error) { return ReorderPages(base, 0, 1) },
		"reorder fields":    func() (model.Template, error) { return ReorderFields(base, 0, 0, 1) },
	}
	before := mustSerialize(t, base)
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if _, err := op(); !errors.Is(err, ErrInvalidIndex) {
				t.Fatalf("expected ErrInvalidIndex, got %v", err)
			}
			if after := mustSerialize(t, base); after != before {
				t.Fatalf("template changed after rejected op")
			}
		})
	}
}

func TestReorder_SameIndexIsNoop(t *testing.T) {
	base := seed(t, 2, 0)
	if diff := cmp.Diff(titles(base), titles(mustOp(t)(ReorderPages(base, 1, 1)))); diff != "" {
		t.Fatalf("unexpected change (-want +got):\n%s", diff)
	}
	next := mustOp(t)(ReorderFields(base, 0, 0, 0))
	if mustSerialize(t, next) != mustSerialize(t, base) {
		t.Fatalf("same-index field reorder changed template")
	}
}

func mustOp(t *testing.T) func(model.Template, error) model.Template {
	t.Helper()
	return func(tmpl model.Template, err error) model.Template {
		t.Helper()
		if err != nil {
			t.Fatalf("operation failed: %v", err)
		}
		return tmpl
	}
}

func mustSerialize(t *testing.T, tmpl model.Template) string {
	t.Helper()
	data, err := SerializeCompact(tmpl)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return string(data)
}

package engine

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

// The functions below are the pure form of every engine operation. Each one
// returns a new template and leaves its input untouched: the page list, the
// edited page's field list and the edited field's lists are copied before
// they change, while untouched pages and fields are shared with the input.
// On error the zero Template is returned and the input remains current.

// AddPage appends an empty page titled "Page N".
func AddPage(t model.Template) model.Template {
	pages := make([]model.Page, len(t.Pages), len(t.Pages)+1)
	copy(pages, t.Pages)
	pages = append(pages, model.NewPage(len(t.Pages)+1))
	return model.Template{Pages: pages}
}

// DeletePage removes the page at pageIdx; later pages shift down by one.
func DeletePage(t model.Template, pageIdx int) (model.Template, error) {
	if err := checkIndex("page", pageIdx, len(t.Pages)); err != nil {
		return model.Template{}, err
	}
	pages := slices.Delete(slices.Clone(t.Pages), pageIdx, pageIdx+1)
	return model.Template{Pages: pages}, nil
}

// UpdatePageTitle replaces the title of the page at pageIdx.
func UpdatePageTitle(t model.Template, pageIdx int, title string) (model.Template, error) {
	return withPage(t, pageIdx, func(page model.Page) (model.Page, error) {
		page.Title = title
		return page, nil
	})
}

// ReorderPages moves the page at source to destination, shifting the pages
// in between by one position.
func ReorderPages(t model.Template, source, destination int) (model.Template, error) {
	if err := checkIndex("source page", source, len(t.Pages)); err != nil {
		return model.Template{}, err
	}
	if err := checkIndex("destination page", destination, len(t.Pages)); err != nil {
		return model.Template{}, err
	}
	if source == destination {
		return t, nil
	}
	return model.Template{Pages: move(t.Pages, source, destination)}, nil
}

// AddField appends a default field to the page at pageIdx.
func AddField(t model.Template, pageIdx int) (model.Template, error) {
	return withPage(t, pageIdx, func(page model.Page) (model.Page, error) {
		fields := make([]model.Field, len(page.Fields), len(page.Fields)+1)
		copy(fields, page.Fields)
		page.Fields = append(fields, model.NewField())
		return page, nil
	})
}

// DeleteField removes a field from the page at pageIdx.
func DeleteField(t model.Template, pageIdx, fieldIdx int) (model.Template, error) {
	return withPage(t, pageIdx, func(page model.Page) (model.Page, error) {
		if err := checkIndex("field", fieldIdx, len(page.Fields)); err != nil {
			return page, err
		}
		page.Fields = slices.Delete(slices.Clone(page.Fields), fieldIdx, fieldIdx+1)
		return page, nil
	})
}

// ReorderFields moves a field within the page at pageIdx. The page index is
// validated before the field indices.
func ReorderFields(t model.Template, pageIdx, source, destination int) (model.Template, error) {
	return withPage(t, pageIdx, func(page model.Page) (model.Page, error) {
		if err := checkIndex("source field", source, len(page.Fields)); err != nil {
			return page, err
		}
		if err := checkIndex("destination field", destination, len(page.Fields)); err != nil {
			return page, err
		}
		if source != destination {
			page.Fields = move(page.Fields, source, destination)
		}
		return page, nil
	})
}

// UpdateField writes one of label, name, type or required. Writing type
// resets validation, options and accept even when the type is unchanged.
func UpdateField(t model.Template, pageIdx, fieldIdx int, key string, value any) (model.Template, error) {
	return withField(t, pageIdx, fieldIdx, func(field model.Field) (model.Field, error) {
		switch key {
		case model.AttrLabel:
			s, ok := value.(string)
			if !ok {
				return field, valueError(key, "a string", value)
			}
			field.Label = s
		case model.AttrName:
			s, ok := value.(string)
			if !ok {
				return field, valueError(key, "a string", value)
			}
			field.Name = s
		case model.AttrRequired:
			b, ok := value.(bool)
			if !ok {
				return field, valueError(key, "a bool", value)
			}
			field.Required = b
		case model.AttrType:
			ft, err := toFieldType(value)
			if err != nil {
				return field, err
			}
			field.SetType(ft)
		default:
			return field, fmt.Errorf("engine: %w: %q", ErrUnknownAttribute, key)
		}
		return field, nil
	})
}

// UpdateValidation stores value under key in the field's validation
// variant. Values are not checked against the key: integral bounds are
// normalized to int and anything else is stored as given. Only keys outside
// the variant are rejected. A nil value clears the key.
func UpdateValidation(t model.Template, pageIdx, fieldIdx int, key string, value any) (model.Template, error) {
	return withField(t, pageIdx, fieldIdx, func(field model.Field) (model.Field, error) {
		current := field.Validation
		if current == nil {
			current = model.ValidationFor(field.Type)
		}
		next, err := current.With(key, value)
		if err != nil {
			return field, fmt.Errorf("engine: %w", err)
		}
		field.Validation = next
		return field, nil
	})
}

// UpdateArrayField sets field[key][index]. The index must already exist.
func UpdateArrayField(t model.Template, pageIdx, fieldIdx int, key model.ArrayKey, index int, value string) (model.Template, error) {
	if !key.Valid() {
		return model.Template{}, fmt.Errorf("engine: %w: %q", ErrUnknownAttribute, key)
	}
	return withField(t, pageIdx, fieldIdx, func(field model.Field) (model.Field, error) {
		items := field.Array(key)
		if err := checkIndex(string(key), index, len(items)); err != nil {
			return field, err
		}
		items = slices.Clone(items)
		items[index] = value
		return setArray(field, key, items), nil
	})
}

// AddArrayFieldItem appends an empty slot to field[key].
func AddArrayFieldItem(t model.Template, pageIdx, fieldIdx int, key model.ArrayKey) (model.Template, error) {
	if !key.Valid() {
		return model.Template{}, fmt.Errorf("engine: %w: %q", ErrUnknownAttribute, key)
	}
	return withField(t, pageIdx, fieldIdx, func(field model.Field) (model.Field, error) {
		current := field.Array(key)
		items := make([]string, len(current), len(current)+1)
		copy(items, current)
		return setArray(field, key, append(items, "")), nil
	})
}

// Serialize renders the template as the indented JSON export document.
func Serialize(t model.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// SerializeCompact renders the template without indentation.
func SerializeCompact(t model.Template) ([]byte, error) {
	return json.Marshal(t)
}

func withPage(t model.Template, pageIdx int, fn func(model.Page) (model.Page, error)) (model.Template, error) {
	if err := checkIndex("page", pageIdx, len(t.Pages)); err != nil {
		return model.Template{}, err
	}
	page, err := fn(t.Pages[pageIdx])
	if err != nil {
		return model.Template{}, err
	}
	pages := slices.Clone(t.Pages)
	pages[pageIdx] = page
	return model.Template{Pages: pages}, nil
}

func withField(t model.Template, pageIdx, fieldIdx int, fn func(model.Field) (model.Field, error)) (model.Template, error) {
	return withPage(t, pageIdx, func(page model.Page) (model.Page, error) {
		if err := checkIndex("field", fieldIdx, len(page.Fields)); err != nil {
			return page, err
		}
		field, err := fn(page.Fields[fieldIdx])
		if err != nil {
			return page, err
		}
		fields := slices.Clone(page.Fields)
		fields[fieldIdx] = field
		page.Fields = fields
		return page, nil
	})
}

func setArray(field model.Field, key model.ArrayKey, items []string) model.Field {
	if key == model.ArrayKeyAccept {
		field.Accept = items
	} else {
		field.Options = items
	}
	return field
}

func move[T any](items []T, source, destination int) []T {
	moved := items[source]
	out := slices.Delete(slices.Clone(items), source, source+1)
	return slices.Insert(out, destination, moved)
}

func checkIndex(scope string, idx, length int) error {
	if idx < 0 || idx >= length {
		return fmt.Errorf("engine: %s index %d out of range [0,%d): %w", scope, idx, length, ErrInvalidIndex)
	}
	return nil
}

func valueError(key, want string, value any) error {
	return fmt.Errorf("engine: %w: %s expects %s, got %T", ErrInvalidValue, key, want, value)
}

func toFieldType(value any) (model.FieldType, error) {
	var raw string
	switch v := value.(type) {
	case model.FieldType:
		raw = string(v)
	case string:
		raw = v
	default:
		return "", valueError(model.AttrType, "a field type", value)
	}
	ft, err := model.ParseFieldType(raw)
	if err != nil {
		return "", fmt.Errorf("engine: %w", err)
	}
	return ft, nil
}

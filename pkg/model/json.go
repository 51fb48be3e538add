package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Wire shapes. Key order follows the exported template format so indented
// output reads the same way the builder preview always showed it.
type templateJSON struct {
	Pages []Page `json:"pages"`
}

type pageJSON struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

type fieldJSON struct {
	Label      string         `json:"label"`
	Name       string         `json:"name"`
	Type       FieldType      `json:"type"`
	Required   bool           `json:"required"`
	Validation map[string]any `json:"validation"`
	Options    []string       `json:"options"`
	Accept     []string       `json:"accept"`
}

// fieldInput mirrors fieldJSON but keeps optional lists distinguishable from
// empty ones while decoding.
type fieldInput struct {
	Label      string         `json:"label"`
	Name       string         `json:"name"`
	Type       FieldType      `json:"type"`
	Required   bool           `json:"required"`
	Validation map[string]any `json:"validation"`
	Options    *[]string      `json:"options"`
	Accept     *[]string      `json:"accept"`
}

// MarshalJSON emits {"pages": [...]}, never null.
func (t Template) MarshalJSON() ([]byte, error) {
	pages := t.Pages
	if pages == nil {
		pages = []Page{}
	}
	return json.Marshal(templateJSON{Pages: pages})
}

// UnmarshalJSON decodes the exported format. Unknown keys, including the
// legacy pageIndex, are ignored.
func (t *Template) UnmarshalJSON(data []byte) error {
	var raw templateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Pages == nil {
		raw.Pages = []Page{}
	}
	t.Pages = raw.Pages
	return nil
}

func (p Page) MarshalJSON() ([]byte, error) {
	fields := p.Fields
	if fields == nil {
		fields = []Field{}
	}
	return json.Marshal(pageJSON{Title: p.Title, Fields: fields})
}

func (p *Page) UnmarshalJSON(data []byte) error {
	var raw pageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Fields == nil {
		raw.Fields = []Field{}
	}
	p.Title = raw.Title
	p.Fields = raw.Fields
	return nil
}

// MarshalJSON always emits all seven keys. Lists are written verbatim, so
// untouched default slots appear as [""].
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.wire())
}

func (f Field) wire() fieldJSON {
	validation := f.Validation
	if validation == nil {
		validation = ValidationFor(f.Type)
	}
	options := f.Options
	if options == nil {
		options = []string{}
	}
	accept := f.Accept
	if accept == nil {
		accept = []string{}
	}
	return fieldJSON{
		Label:      f.Label,
		Name:       f.Name,
		Type:       f.Type,
		Required:   f.Required,
		Validation: wireRules(validation.Rules()),
		Options:    options,
		Accept:     accept,
	}
}

// wireRules replaces non-finite floats with nil so they encode as null.
func wireRules(rules map[string]any) map[string]any {
	for key, value := range rules {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case float32:
			f = float64(v)
		default:
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			rules[key] = nil
		}
	}
	return rules
}

// UnmarshalJSON decodes a field and rebuilds its validation variant. A
// missing type defaults to text and missing lists default to [""].
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw fieldInput
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type == "" {
		raw.Type = FieldTypeText
	}
	if !raw.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFieldType, raw.Type)
	}
	validation, err := ValidationFromRules(raw.Type, raw.Validation)
	if err != nil {
		return fmt.Errorf("model: field %q: %w", raw.Name, err)
	}

	out := Field{
		Label:      raw.Label,
		Name:       raw.Name,
		Type:       raw.Type,
		Required:   raw.Required,
		Validation: validation,
		Options:    []string{""},
		Accept:     []string{""},
	}
	if raw.Options != nil {
		out.Options = append([]string{}, (*raw.Options)...)
	}
	if raw.Accept != nil {
		out.Accept = append([]string{}, (*raw.Accept)...)
	}
	*f = out
	return nil
}

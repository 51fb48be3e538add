package model

// YAML shapes reuse the JSON key names so both exports describe the same
// document.
type templateYAML struct {
	Pages []pageYAML `yaml:"pages"`
}

type pageYAML struct {
	Title  string      `yaml:"title"`
	Fields []fieldYAML `yaml:"fields"`
}

type fieldYAML struct {
	Label      string         `yaml:"label"`
	Name       string         `yaml:"name"`
	Type       FieldType      `yaml:"type"`
	Required   bool           `yaml:"required"`
	Validation map[string]any `yaml:"validation"`
	Options    []string       `yaml:"options"`
	Accept     []string       `yaml:"accept"`
}

// MarshalYAML implements yaml.Marshaler.
func (t Template) MarshalYAML() (any, error) {
	out := templateYAML{Pages: make([]pageYAML, 0, len(t.Pages))}
	for _, page := range t.Pages {
		p := pageYAML{Title: page.Title, Fields: make([]fieldYAML, 0, len(page.Fields))}
		for _, field := range page.Fields {
			w := field.wire()
			p.Fields = append(p.Fields, fieldYAML(w))
		}
		out.Pages = append(out.Pages, p)
	}
	return out, nil
}

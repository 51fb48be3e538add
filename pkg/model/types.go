package model

import "fmt"

// FieldType enumerates the input kinds a template field can take.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeSelect FieldType = "select"
	FieldTypeRadio  FieldType = "radio"
	FieldTypeFile   FieldType = "file"
)

// FieldTypes lists every supported type in the order the builder offers them.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeSelect,
	FieldTypeRadio,
	FieldTypeFile,
}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeSelect, FieldTypeRadio, FieldTypeFile:
		return true
	default:
		return false
	}
}

// UsesOptions reports whether the options list is the active attribute.
func (t FieldType) UsesOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio
}

// UsesAccept reports whether the accept list is the active attribute.
func (t FieldType) UsesAccept() bool {
	return t == FieldTypeFile
}

// ParseFieldType converts a raw string into a FieldType.
func ParseFieldType(raw string) (FieldType, error) {
	t := FieldType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFieldType, raw)
	}
	return t, nil
}

// ArrayKey names one of the two list attributes on a field.
type ArrayKey string

const (
	ArrayKeyOptions ArrayKey = "options"
	ArrayKeyAccept  ArrayKey = "accept"
)

// Valid reports whether k names a list attribute.
func (k ArrayKey) Valid() bool {
	return k == ArrayKeyOptions || k == ArrayKeyAccept
}

// Attribute keys accepted by field updates.
const (
	AttrLabel    = "label"
	AttrName     = "name"
	AttrType     = "type"
	AttrRequired = "required"
)

// Field is one input definition inside a page. Validation always holds the
// variant matching Type; use NewField and SetType to keep that true.
type Field struct {
	Label      string
	Name       string
	Type       FieldType
	Required   bool
	Validation Validation
	Options    []string
	Accept     []string
}

// NewField returns a field in its creation state: empty label and name, text
// type, optional, and the default validation/options/accept shape.
func NewField() Field {
	f := Field{}
	f.SetType(FieldTypeText)
	return f
}

// SetType writes the type and unconditionally resets the type-dependent
// attributes, even when t equals the current type.
func (f *Field) SetType(t FieldType) {
	f.Type = t
	f.Validation = ValidationFor(t)
	f.Options = []string{""}
	f.Accept = []string{""}
}

// Array returns the list stored under key.
func (f Field) Array(key ArrayKey) []string {
	if key == ArrayKeyAccept {
		return f.Accept
	}
	return f.Options
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	out.Options = cloneStrings(f.Options)
	out.Accept = cloneStrings(f.Accept)
	return out
}

// Page groups an ordered list of fields under a title. A page has no
// identity besides its position inside the template.
type Page struct {
	Title  string
	Fields []Field
}

// NewPage returns an empty page titled after its 1-based position.
func NewPage(position int) Page {
	return Page{
		Title:  fmt.Sprintf("Page %d", position),
		Fields: []Field{},
	}
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	out := Page{Title: p.Title, Fields: make([]Field, len(p.Fields))}
	for i, field := range p.Fields {
		out.Fields[i] = field.Clone()
	}
	return out
}

// Template is the full multi-page form definition.
type Template struct {
	Pages []Page
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	out := Template{Pages: make([]Page, len(t.Pages))}
	for i, page := range t.Pages {
		out.Pages[i] = page.Clone()
	}
	return out
}

// FieldCount returns the total number of fields across pages.
func (t Template) FieldCount() int {
	total := 0
	for _, page := range t.Pages {
		total += len(page.Fields)
	}
	return total
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

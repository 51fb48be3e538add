package schemaexport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

// Extension keys written on generated properties.
const (
	ExtensionWidget = "x-formgen-widget"
	ExtensionPage   = "x-formgen-page"
	ExtensionAccept = "x-formgen-accept"
)

var (
	// ErrUnnamedField is returned when a field has no name to key it by.
	ErrUnnamedField = errors.New("schemaexport: field name is required")
	// ErrDuplicateName is returned when two fields share a name.
	ErrDuplicateName = errors.New("schemaexport: duplicate field name")
)

// RequestSchema flattens every page into one object schema whose properties
// follow page and field order. Text regexes become patterns, number bounds
// become minimum/maximum, choice options become an enum and file fields
// become binary strings.
func RequestSchema(tmpl model.Template) (*openapi3.Schema, error) {
	root := openapi3.NewObjectSchema()
	root.Properties = make(openapi3.Schemas)
	var required []string

	for pageIdx, page := range tmpl.Pages {
		for fieldIdx, field := range page.Fields {
			name := strings.TrimSpace(field.Name)
			if name == "" {
				return nil, fmt.Errorf("%w: page %d field %d", ErrUnnamedField, pageIdx, fieldIdx)
			}
			if _, exists := root.Properties[name]; exists {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
			}
			prop := fieldSchema(field)
			prop.Extensions[ExtensionPage] = page.Title
			root.Properties[name] = openapi3.NewSchemaRef("", prop)
			if field.Required {
				required = append(required, name)
			}
		}
	}
	root.Required = required
	return root, nil
}

// HasFiles reports whether any field uploads a file.
func HasFiles(tmpl model.Template) bool {
	for _, page := range tmpl.Pages {
		for _, field := range page.Fields {
			if field.Type == model.FieldTypeFile {
				return true
			}
		}
	}
	return false
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch field.Type {
	case model.FieldTypeNumber:
		schema = openapi3.NewIntegerSchema()
		if v, ok := field.Validation.(model.NumberValidation); ok {
			if lo, ok := v.MinInt(); ok {
				schema = schema.WithMin(float64(lo))
			}
			if hi, ok := v.MaxInt(); ok {
				schema = schema.WithMax(float64(hi))
			}
		}
	case model.FieldTypeSelect, model.FieldTypeRadio:
		schema = openapi3.NewStringSchema()
		if values := nonEmpty(field.Options); len(values) > 0 {
			enum := make([]any, len(values))
			for i, value := range values {
				enum[i] = value
			}
			schema = schema.WithEnum(enum...)
		}
	case model.FieldTypeFile:
		schema = openapi3.NewStringSchema().WithFormat("binary")
	default:
		schema = openapi3.NewStringSchema()
		if v, ok := field.Validation.(model.TextValidation); ok {
			if pattern, ok := v.Pattern(); ok {
				schema = schema.WithPattern(pattern)
			}
		}
	}

	schema.Title = field.Label
	schema.Extensions = map[string]any{
		ExtensionWidget: string(field.Type),
	}
	if field.Type == model.FieldTypeFile {
		if accept := nonEmpty(field.Accept); len(accept) > 0 {
			schema.Extensions[ExtensionAccept] = accept
		}
	}
	return schema
}

func nonEmpty(values []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

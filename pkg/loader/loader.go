package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

// ErrEmpty is returned when a template source holds no content.
var ErrEmpty = errors.New("loader: template source is empty")

// LoadFile reads a JSON or YAML template from disk.
func LoadFile(path string) (model.Template, error) {
	if strings.TrimSpace(path) == "" {
		return model.Template{}, errors.New("loader: template path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Template{}, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads a JSON or YAML template from fsys.
func LoadFS(fsys fs.FS, path string) (model.Template, error) {
	if fsys == nil {
		return model.Template{}, errors.New("loader: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return model.Template{}, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a template document. JSON is tried first; input that is not
// valid JSON syntax is parsed as YAML and decoded through the same JSON
// rules, so both encodings accept exactly the same documents.
func Parse(data []byte, source string) (model.Template, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Template{}, fmt.Errorf("%w: %s", ErrEmpty, source)
	}

	if !isYAMLPath(source) {
		var tmpl model.Template
		err := json.Unmarshal(data, &tmpl)
		if err == nil {
			return tmpl, nil
		}
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			return model.Template{}, fmt.Errorf("loader: parse %s: %w", source, err)
		}
	}

	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return model.Template{}, fmt.Errorf("loader: parse %s: invalid JSON or YAML: %w", source, err)
	}
	normalized, err := json.Marshal(generic)
	if err != nil {
		return model.Template{}, fmt.Errorf("loader: parse %s: %w", source, err)
	}

	var tmpl model.Template
	if err := json.Unmarshal(normalized, &tmpl); err != nil {
		return model.Template{}, fmt.Errorf("loader: parse %s: %w", source, err)
	}
	return tmpl, nil
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

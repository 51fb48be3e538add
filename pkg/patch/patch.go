package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

const (
	OperationAdd     = "add"
	OperationRemove  = "remove"
	OperationReplace = "replace"
	OperationMove    = "move"
	OperationCopy    = "copy"
	OperationTest    = "test"
)

// ErrInvalidPatch is returned when a patch document cannot be decoded.
var ErrInvalidPatch = errors.New("patch: invalid patch document")

// Operation is one RFC 6902 operation against the exported template
// document, e.g. {"op":"replace","path":"/pages/0/title","value":"Intro"}.
type Operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

var typePath = regexp.MustCompile(`^(/pages/\d+/fields/\d+)/type$`)

// Decode parses a JSON array of operations.
func Decode(data []byte) ([]Operation, error) {
	var ops []Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	for i, op := range ops {
		switch op.Op {
		case OperationAdd, OperationRemove, OperationReplace, OperationMove, OperationCopy, OperationTest:
		default:
			return nil, fmt.Errorf("%w: operation %d has unknown op %q", ErrInvalidPatch, i, op.Op)
		}
		if !strings.HasPrefix(op.Path, "/") {
			return nil, fmt.Errorf("%w: operation %d path %q must start with /", ErrInvalidPatch, i, op.Path)
		}
	}
	return ops, nil
}

// ExpandTypeResets follows every add/replace of a field's type with resets
// of its validation, options and accept, matching the engine's type write
// rule so a patch cannot leave stale rules behind.
func ExpandTypeResets(ops []Operation) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		out = append(out, op)
		if op.Op != OperationAdd && op.Op != OperationReplace {
			continue
		}
		match := typePath.FindStringSubmatch(op.Path)
		if match == nil {
			continue
		}
		field := match[1]
		out = append(out,
			Operation{Op: OperationReplace, Path: field + "/validation", Value: json.RawMessage(`{}`)},
			Operation{Op: OperationReplace, Path: field + "/options", Value: json.RawMessage(`[""]`)},
			Operation{Op: OperationReplace, Path: field + "/accept", Value: json.RawMessage(`[""]`)},
		)
	}
	return out
}

// Apply runs ops against the template and decodes the result, so the
// patched document must still satisfy the template schema (known types,
// validation keys matching each type). The input template is not modified.
func Apply(tmpl model.Template, ops []Operation) (model.Template, error) {
	if len(ops) == 0 {
		return tmpl.Clone(), nil
	}

	current, err := json.Marshal(tmpl)
	if err != nil {
		return model.Template{}, fmt.Errorf("patch: marshal template: %w", err)
	}

	raw, err := json.Marshal(ExpandTypeResets(ops))
	if err != nil {
		return model.Template{}, fmt.Errorf("patch: marshal operations: %w", err)
	}
	decoded, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return model.Template{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	modified, err := decoded.Apply(current)
	if err != nil {
		return model.Template{}, fmt.Errorf("patch: apply: %w", err)
	}

	var out model.Template
	if err := json.Unmarshal(modified, &out); err != nil {
		return model.Template{}, fmt.Errorf("patch: patched template is invalid: %w", err)
	}
	return out, nil
}

// ApplyJSON decodes and applies a raw patch document.
func ApplyJSON(tmpl model.Template, data []byte) (model.Template, error) {
	ops, err := Decode(data)
	if err != nil {
		return model.Template{}, err
	}
	return Apply(tmpl, ops)
}

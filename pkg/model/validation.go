package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnknownFieldType signals a type outside the supported enumeration.
	ErrUnknownFieldType = errors.New("model: unknown field type")
	// ErrValidationKey signals a validation key the field type does not carry.
	ErrValidationKey = errors.New("model: validation key not supported by field type")
	// ErrInvalidValue signals an attribute value of the wrong kind.
	ErrInvalidValue = errors.New("model: invalid value")
)

// Validation rule keys.
const (
	RuleRegex = "regex"
	RuleMin   = "min"
	RuleMax   = "max"
)

// Validation is the per-type validation payload of a field. Each FieldType
// maps to exactly one variant and a variant only accepts its own keys.
// Variants are values; With returns a modified copy.
type Validation interface {
	// With returns a copy carrying value under key. A nil value clears the key.
	With(key string, value any) (Validation, error)
	// Rules returns the populated keys as a fresh map, never nil.
	Rules() map[string]any
	// Keys lists the keys the variant accepts.
	Keys() []string

	isValidation()
}

// ValidationFor returns the empty variant for t.
func ValidationFor(t FieldType) Validation {
	switch t {
	case FieldTypeNumber:
		return NumberValidation{}
	case FieldTypeSelect, FieldTypeRadio:
		return ChoiceValidation{}
	case FieldTypeFile:
		return FileValidation{}
	default:
		return TextValidation{}
	}
}

// ValidationFromRules rebuilds the variant for t from a decoded rule map.
func ValidationFromRules(t FieldType, rules map[string]any) (Validation, error) {
	out := ValidationFor(t)
	keys := make([]string, 0, len(rules))
	for key := range rules {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		next, err := out.With(key, rules[key])
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// TextValidation holds the optional regex applied to text input. Regex is
// a string when set from a string; any other value is kept as given.
type TextValidation struct {
	Regex any
}

func (TextValidation) isValidation() {}

func (v TextValidation) Keys() []string { return []string{RuleRegex} }

func (v TextValidation) With(key string, value any) (Validation, error) {
	if key != RuleRegex {
		return nil, keyError(key, FieldTypeText)
	}
	v.Regex = value
	return v, nil
}

func (v TextValidation) Rules() map[string]any {
	out := map[string]any{}
	if v.Regex != nil {
		out[RuleRegex] = v.Regex
	}
	return out
}

// Pattern returns the regex when it is a non-empty string.
func (v TextValidation) Pattern() (string, bool) {
	s, ok := v.Regex.(string)
	return s, ok && s != ""
}

// NumberValidation holds optional bounds. A bound that coerces to an
// integer is stored as int; anything else is kept verbatim and left for
// consumers such as lint to judge.
type NumberValidation struct {
	Min any
	Max any
}

func (NumberValidation) isValidation() {}

func (v NumberValidation) Keys() []string { return []string{RuleMin, RuleMax} }

func (v NumberValidation) With(key string, value any) (Validation, error) {
	var target *any
	switch key {
	case RuleMin:
		target = &v.Min
	case RuleMax:
		target = &v.Max
	default:
		return nil, keyError(key, FieldTypeNumber)
	}
	*target = normalizeBound(value)
	return v, nil
}

func (v NumberValidation) Rules() map[string]any {
	out := map[string]any{}
	if v.Min != nil {
		out[RuleMin] = v.Min
	}
	if v.Max != nil {
		out[RuleMax] = v.Max
	}
	return out
}

// MinInt returns the lower bound when it is set and integral.
func (v NumberValidation) MinInt() (int, bool) {
	n, ok := v.Min.(int)
	return n, ok
}

// MaxInt returns the upper bound when it is set and integral.
func (v NumberValidation) MaxInt() (int, bool) {
	n, ok := v.Max.(int)
	return n, ok
}

func normalizeBound(value any) any {
	if value == nil {
		return nil
	}
	if n, err := toInt(value); err == nil {
		return n
	}
	return value
}

// ChoiceValidation is the variant for select and radio fields. Their
// constraint lives in the options list, so it carries no keys.
type ChoiceValidation struct{}

func (ChoiceValidation) isValidation() {}

func (ChoiceValidation) Keys() []string { return nil }

func (ChoiceValidation) With(key string, _ any) (Validation, error) {
	return nil, keyError(key, FieldTypeSelect)
}

func (ChoiceValidation) Rules() map[string]any { return map[string]any{} }

// FileValidation is the variant for file fields; accepted extensions live
// in the accept list.
type FileValidation struct{}

func (FileValidation) isValidation() {}

func (FileValidation) Keys() []string { return nil }

func (FileValidation) With(key string, _ any) (Validation, error) {
	return nil, keyError(key, FieldTypeFile)
}

func (FileValidation) Rules() map[string]any { return map[string]any{} }

func keyError(key string, t FieldType) error {
	return fmt.Errorf("%w: %q on %s", ErrValidationKey, key, t)
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		return strconv.Atoi(v.String())
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int(f), nil
}

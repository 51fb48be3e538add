package engine

import (
	"errors"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

var (
	// ErrInvalidIndex is returned when a page, field or list index falls
	// outside the current bounds. The template is left unchanged.
	ErrInvalidIndex = errors.New("engine: invalid index")
	// ErrUnknownAttribute is returned for update keys the field does not have.
	ErrUnknownAttribute = errors.New("engine: unknown attribute")
	// ErrUnknownScope is returned for drag results outside page/field scope.
	ErrUnknownScope = errors.New("engine: unknown drag scope")

	ErrInvalidValue     = model.ErrInvalidValue
	ErrUnknownFieldType = model.ErrUnknownFieldType
	ErrValidationKey    = model.ErrValidationKey
)

package engine

import (
	"fmt"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

// DragScope identifies which list a completed drag gesture reordered.
type DragScope string

const (
	DragScopePage  DragScope = "page"
	DragScopeField DragScope = "field"
)

// DragResult is what a drag-and-drop layer reports when a gesture ends.
// Cancelled marks a drop outside any list; it is a no-op.
type DragResult struct {
	Scope       DragScope `json:"scope"`
	PageIndex   int       `json:"pageIndex,omitempty"`
	Source      int       `json:"sourceIndex"`
	Destination int       `json:"destinationIndex"`
	Cancelled   bool      `json:"cancelled,omitempty"`
}

// ApplyDrag routes a drag result to ReorderPages or ReorderFields.
func ApplyDrag(t model.Template, result DragResult) (model.Template, error) {
	if result.Cancelled {
		return t, nil
	}
	switch result.Scope {
	case DragScopePage:
		return ReorderPages(t, result.Source, result.Destination)
	case DragScopeField:
		return ReorderFields(t, result.PageIndex, result.Source, result.Destination)
	default:
		return model.Template{}, fmt.Errorf("%w: %q", ErrUnknownScope, result.Scope)
	}
}

// Drag applies a completed gesture to the current snapshot.
func (e *Engine) Drag(result DragResult) error {
	if result.Cancelled {
		return nil
	}
	return e.apply("drag "+string(result.Scope), func(t model.Template) (model.Template, error) {
		return ApplyDrag(t, result)
	})
}

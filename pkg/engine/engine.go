package engine

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

// Engine owns the current template snapshot. Every mutating method computes
// a complete replacement with the pure functions in this package and only
// publishes it when the operation succeeds, so a rejected call never leaves
// a partially edited tree behind.
//
// Engine is not safe for concurrent use; callers drive it from one goroutine.
type Engine struct {
	current   model.Template
	logger    *zap.Logger
	observers []Observer
}

// New returns an engine holding an empty template.
func New(options ...Option) *Engine {
	e := &Engine{
		current: model.Template{Pages: []model.Page{}},
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Template returns a deep copy of the current snapshot.
func (e *Engine) Template() model.Template {
	return e.current.Clone()
}

// PageCount reports the number of pages in the current snapshot.
func (e *Engine) PageCount() int {
	return len(e.current.Pages)
}

// FieldCount reports the number of fields on a page.
func (e *Engine) FieldCount(pageIdx int) (int, error) {
	if err := checkIndex("page", pageIdx, len(e.current.Pages)); err != nil {
		return 0, err
	}
	return len(e.current.Pages[pageIdx].Fields), nil
}

// Field returns a copy of one field.
func (e *Engine) Field(pageIdx, fieldIdx int) (model.Field, error) {
	if err := checkIndex("page", pageIdx, len(e.current.Pages)); err != nil {
		return model.Field{}, err
	}
	fields := e.current.Pages[pageIdx].Fields
	if err := checkIndex("field", fieldIdx, len(fields)); err != nil {
		return model.Field{}, err
	}
	return fields[fieldIdx].Clone(), nil
}

// AddPage appends an empty page titled after its position.
func (e *Engine) AddPage() {
	e.publish("add page", AddPage(e.current))
}

// DeletePage removes a page; later pages shift down by one.
func (e *Engine) DeletePage(pageIdx int) error {
	return e.apply("delete page", func(t model.Template) (model.Template, error) {
		return DeletePage(t, pageIdx)
	}, zap.Int("page", pageIdx))
}

// UpdatePageTitle renames a page.
func (e *Engine) UpdatePageTitle(pageIdx int, title string) error {
	return e.apply("update page title", func(t model.Template) (model.Template, error) {
		return UpdatePageTitle(t, pageIdx, title)
	}, zap.Int("page", pageIdx))
}

// ReorderPages moves the page at source to destination.
func (e *Engine) ReorderPages(source, destination int) error {
	return e.apply("reorder pages", func(t model.Template) (model.Template, error) {
		return ReorderPages(t, source, destination)
	}, zap.Int("source", source), zap.Int("destination", destination))
}

// AddField appends a default text field to a page.
func (e *Engine) AddField(pageIdx int) error {
	return e.apply("add field", func(t model.Template) (model.Template, error) {
		return AddField(t, pageIdx)
	}, zap.Int("page", pageIdx))
}

// DeleteField removes one field from a page.
func (e *Engine) DeleteField(pageIdx, fieldIdx int) error {
	return e.apply("delete field", func(t model.Template) (model.Template, error) {
		return DeleteField(t, pageIdx, fieldIdx)
	}, zap.Int("page", pageIdx), zap.Int("field", fieldIdx))
}

// ReorderFields moves a field within its page.
func (e *Engine) ReorderFields(pageIdx, source, destination int) error {
	return e.apply("reorder fields", func(t model.Template) (model.Template, error) {
		return ReorderFields(t, pageIdx, source, destination)
	}, zap.Int("page", pageIdx), zap.Int("source", source), zap.Int("destination", destination))
}

// UpdateField writes label, name, type or required; a type write resets rules and lists.
func (e *Engine) UpdateField(pageIdx, fieldIdx int, key string, value any) error {
	return e.apply("update field", func(t model.Template) (model.Template, error) {
		return UpdateField(t, pageIdx, fieldIdx, key, value)
	}, zap.Int("page", pageIdx), zap.Int("field", fieldIdx), zap.String("key", key))
}

// UpdateValidation stores a validation rule; malformed values are kept as given.
func (e *Engine) UpdateValidation(pageIdx, fieldIdx int, key string, value any) error {
	return e.apply("update validation", func(t model.Template) (model.Template, error) {
		return UpdateValidation(t, pageIdx, fieldIdx, key, value)
	}, zap.Int("page", pageIdx), zap.Int("field", fieldIdx), zap.String("key", key))
}

// UpdateArrayField overwrites an existing options or accept slot.
func (e *Engine) UpdateArrayField(pageIdx, fieldIdx int, key model.ArrayKey, index int, value string) error {
	return e.apply("update array field", func(t model.Template) (model.Template, error) {
		return UpdateArrayField(t, pageIdx, fieldIdx, key, index, value)
	}, zap.Int("page", pageIdx), zap.Int("field", fieldIdx), zap.String("key", string(key)), zap.Int("index", index))
}

// AddArrayFieldItem appends an empty options or accept slot.
func (e *Engine) AddArrayFieldItem(pageIdx, fieldIdx int, key model.ArrayKey) error {
	return e.apply("add array field item", func(t model.Template) (model.Template, error) {
		return AddArrayFieldItem(t, pageIdx, fieldIdx, key)
	}, zap.Int("page", pageIdx), zap.Int("field", fieldIdx), zap.String("key", string(key)))
}

// Replace swaps the whole snapshot, e.g. after applying a patch document.
func (e *Engine) Replace(t model.Template) {
	e.publish("replace", t.Clone())
}

// Serialize returns the indented JSON export of the current snapshot.
func (e *Engine) Serialize() ([]byte, error) {
	return Serialize(e.current)
}

func (e *Engine) apply(op string, fn func(model.Template) (model.Template, error), fields ...zap.Field) error {
	next, err := fn(e.current)
	if err != nil {
		e.logger.Debug("template operation rejected",
			append(fields, zap.String("op", op), zap.Error(err))...)
		return err
	}
	e.publish(op, next, fields...)
	return nil
}

func (e *Engine) publish(op string, next model.Template, fields ...zap.Field) {
	e.current = next
	e.logger.Debug("template operation applied",
		append(fields, zap.String("op", op), zap.Int("pages", len(next.Pages)))...)
	for _, observer := range e.observers {
		observer(next.Clone())
	}
}

package engine

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

// Observer receives every template the engine publishes.
type Observer func(model.Template)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for operation tracing. A nil logger keeps
// the no-op default.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTemplate seeds the engine with an existing template, e.g. one read
// back from an export file.
func WithTemplate(t model.Template) Option {
	return func(e *Engine) {
		e.current = t.Clone()
	}
}

// WithObserver registers a callback invoked after each successful mutation.
func WithObserver(fn Observer) Option {
	return func(e *Engine) {
		if fn != nil {
			e.observers = append(e.observers, fn)
		}
	}
}

package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formtemplate/pkg/export"
)

// Theme captures optional message prefixes the editor applies when printing
// feedback. Keep minimal to avoid coupling editor logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the Editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver used by the editor.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithSink sets where the Save action writes the template.
func WithSink(sink export.Sink) Option {
	return func(e *Editor) {
		e.sink = sink
	}
}

// WithLogger sets the logger used for editor diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.theme = theme
	}
}

package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

// DefaultFilename is the name the builder's download action uses.
const DefaultFilename = "form-template.json"

// Format selects the export encoding.
type Format string

const (
	// FormatJSON emits the indented JSON document.
	FormatJSON Format = "json"
	// FormatYAML emits the same document as YAML.
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// ParseFormat normalises a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode renders the template in the requested format. JSON output uses two
// space indentation and ends with a newline.
func Encode(tmpl model.Template, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(tmpl, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("export: encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(tmpl)
		if err != nil {
			return nil, fmt.Errorf("export: encode yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Sink receives serialized templates.
type Sink interface {
	Export(ctx context.Context, tmpl model.Template) error
}

// Option configures the sinks in this package.
type Option func(*options)

type options struct {
	format Format
	logger *zap.Logger
}

// WithFormat overrides the export format.
func WithFormat(format Format) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

// WithLogger sets the logger used to report completed exports.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(defaultFormat Format, opts []Option) options {
	cfg := options{format: defaultFormat, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WriterSink writes each export to an io.Writer, e.g. stdout for previews.
type WriterSink struct {
	w   io.Writer
	cfg options
}

// NewWriterSink returns a sink writing JSON (by default) to w.
func NewWriterSink(w io.Writer, opts ...Option) *WriterSink {
	return &WriterSink{w: w, cfg: buildOptions(FormatJSON, opts)}
}

func (s *WriterSink) Export(ctx context.Context, tmpl model.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(tmpl, s.cfg.format)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

// FileSink writes exports to a file path. The file is replaced atomically so
// readers never observe a partially written template.
type FileSink struct {
	path string
	cfg  options
}

// NewFileSink returns a sink for path. An empty path falls back to
// DefaultFilename; the format defaults to the one implied by the extension.
func NewFileSink(path string, opts ...Option) *FileSink {
	if strings.TrimSpace(path) == "" {
		path = DefaultFilename
	}
	return &FileSink{path: path, cfg: buildOptions(FormatFromPath(path), opts)}
}

// Path reports the destination file.
func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Export(ctx context.Context, tmpl model.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(tmpl, s.cfg.format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".formtemplate-*")
	if err != nil {
		return fmt.Errorf("export: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("export: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("export: chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("export: rename to %s: %w", s.path, err)
	}

	s.cfg.logger.Info("template exported",
		zap.String("path", s.path),
		zap.String("format", string(s.cfg.format)),
		zap.Int("pages", len(tmpl.Pages)),
		zap.Int("fields", tmpl.FieldCount()),
	)
	return nil
}

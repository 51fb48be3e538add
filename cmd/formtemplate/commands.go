package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formtemplate/pkg/engine"
	"github.com/goliatone/go-formtemplate/pkg/export"
	"github.com/goliatone/go-formtemplate/pkg/lint"
	"github.com/goliatone/go-formtemplate/pkg/patch"
	"github.com/goliatone/go-formtemplate/pkg/schemaexport"
	"github.com/goliatone/go-formtemplate/pkg/tui"
)

var errLintFailed = errors.New("lint: template has errors")

func newNewCommand(a *app) *cobra.Command {
	var (
		pages    int
		fields   int
		toStdout bool
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a template with empty pages",
		Long: `Create a template with the given number of pages, each holding the
given number of default text fields.

Examples:
  formtemplate new
  formtemplate new --pages 3 --fields 2 -o onboarding.yaml
  formtemplate new --stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pages < 0 || fields < 0 {
				return fmt.Errorf("pages and fields must not be negative")
			}
			eng := engine.New(engine.WithLogger(a.logger))
			for p := 0; p < pages; p++ {
				eng.AddPage()
				for f := 0; f < fields; f++ {
					if err := eng.AddField(p); err != nil {
						return err
					}
				}
			}
			return a.save(cmd, eng.Template(), a.cfg.Output, a.cfg.Format, toStdout)
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages")
	cmd.Flags().IntVar(&fields, "fields", 0, "number of fields per page")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print instead of writing a file")
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [template]",
		Short: "Edit a template interactively",
		Long: `Open the interactive editor. When a template file is given it is loaded
and Save writes back to it unless --output is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []engine.Option{engine.WithLogger(a.logger)}
			source := ""
			if len(args) == 1 {
				source = args[0]
				tmpl, err := a.load(source)
				if err != nil {
					return err
				}
				opts = append(opts, engine.WithTemplate(tmpl))
			}
			eng := engine.New(opts...)

			path, format := a.destination(cmd, source)
			editor, err := tui.New(eng,
				tui.WithSink(a.fileSink(path, format)),
				tui.WithLogger(a.logger),
				tui.WithTheme(tui.Theme{InfoPrefix: "» ", ErrorPrefix: "✗ "}),
			)
			if err != nil {
				return err
			}
			if err := editor.Run(cmd.Context()); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Aborted, unsaved changes discarded")
					return nil
				}
				return err
			}
			return nil
		},
	}
}

func newLintCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lint <template>",
		Short: "Check a template for problems",
		Long: `Check a template for problems that would break consumers: missing or
duplicate field names, invalid regular expressions, inverted number
bounds, empty option lists and markup in titles or labels.

The command fails when any error-level issue is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := a.load(args[0])
			if err != nil {
				return err
			}
			result := lint.Lint(tmpl)
			a.logger.Debug("template linted",
				zap.Bool("valid", result.Valid),
				zap.Int("issues", len(result.Issues)),
			)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				for _, issue := range result.Issues {
					fmt.Fprintf(out, "%-7s %s: %s\n", issue.Severity, issue.Path, issue.Message)
				}
				if len(result.Issues) == 0 {
					fmt.Fprintln(out, "No issues found")
				}
			}
			if !result.Valid {
				return fmt.Errorf("%w: %d error(s)", errLintFailed, len(result.Errors()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the lint result as JSON")
	return cmd
}

func newPatchCommand(a *app) *cobra.Command {
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "patch <template> <patch.json>",
		Short: "Apply an RFC 6902 JSON Patch to a template",
		Long: `Apply a JSON Patch document to a template. Replacing a field type also
resets that field's validation, options and accept lists. The result must
still be a valid template; otherwise nothing is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := a.load(args[0])
			if err != nil {
				return err
			}
			doc, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read patch: %w", err)
			}
			next, err := patch.ApplyJSON(tmpl, doc)
			if err != nil {
				return err
			}
			path, format := a.destination(cmd, args[0])
			return a.save(cmd, next, path, format, toStdout)
		},
	}
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print instead of writing a file")
	return cmd
}

func newSchemaCommand(a *app) *cobra.Command {
	var (
		document bool
		opts     schemaexport.DocumentOptions
	)
	cmd := &cobra.Command{
		Use:   "schema <template>",
		Short: "Print the OpenAPI schema of a template's submissions",
		Long: `Print the OpenAPI schema describing a submission of the template. With
--document the schema is wrapped in a complete OpenAPI 3 document exposing
a single POST operation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := a.load(args[0])
			if err != nil {
				return err
			}

			var out any
			if document {
				out, err = schemaexport.Document(tmpl, opts)
			} else {
				out, err = schemaexport.RequestSchema(tmpl)
			}
			if err != nil {
				return err
			}
			data, err := encodeDocument(out, a.cfg.Format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&document, "document", false, "emit a full OpenAPI document")
	flags.StringVar(&opts.Title, "title", "", "document title")
	flags.StringVar(&opts.Version, "doc-version", "", "document version")
	flags.StringVar(&opts.Path, "path", "", "submission path")
	flags.StringVar(&opts.OperationID, "operation-id", "", "submission operation id")
	return cmd
}

func newConvertCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <template> [destination]",
		Short: "Convert a template between JSON and YAML",
		Long: `Read a template and write it again in the format implied by the
destination extension, or --format when printing to stdout.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := a.load(args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return a.stdoutSink(cmd).Export(cmd.Context(), tmpl)
			}
			format := export.FormatFromPath(args[1])
			if cmd.Flags().Changed("format") {
				format = a.cfg.Format
			}
			return a.save(cmd, tmpl, args[1], format, false)
		},
	}
}

// encodeDocument renders kin-openapi values, whose YAML form is derived
// from their JSON encoding.
func encodeDocument(v any, format export.Format) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	if format != export.FormatYAML {
		return append(data, '\n'), nil
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return out, nil
}

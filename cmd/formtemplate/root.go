package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formtemplate/internal/config"
	"github.com/goliatone/go-formtemplate/pkg/export"
	"github.com/goliatone/go-formtemplate/pkg/loader"
	"github.com/goliatone/go-formtemplate/pkg/model"
)

// app carries the state shared by every subcommand once the root
// pre-run hook has resolved configuration.
type app struct {
	envFile string
	output  string
	format  string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{cfg: config.Default(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "formtemplate",
		Short: "Build multi-page form templates",
		Long: `formtemplate builds form templates: ordered pages of typed fields
(text, number, select, radio, file) with per-type validation, option
lists and accepted file types. Templates are stored as JSON or YAML.

Settings can come from a .env file or FORMTEMPLATE_* variables:
  FORMTEMPLATE_OUTPUT     destination file (default form-template.json)
  FORMTEMPLATE_FORMAT     json or yaml
  FORMTEMPLATE_LOG_LEVEL  debug, info, warn, error
  FORMTEMPLATE_LOG_JSON   emit JSON logs`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "load settings from this .env file")
	flags.StringVarP(&a.output, "output", "o", "", "destination file")
	flags.StringVarP(&a.format, "format", "f", "", "output format: json or yaml")

	root.AddCommand(
		newNewCommand(a),
		newEditCommand(a),
		newLintCommand(a),
		newPatchCommand(a),
		newSchemaCommand(a),
		newConvertCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = a.output
		cfg.Format = export.FormatFromPath(a.output)
	}
	if flags.Changed("format") {
		format, err := export.ParseFormat(a.format)
		if err != nil {
			return err
		}
		cfg.Format = format
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.Named("formtemplate")
	return nil
}

// destination picks where a command that read source should write. An
// explicit --output wins, then the source itself, then the configured output.
func (a *app) destination(cmd *cobra.Command, source string) (string, export.Format) {
	if cmd.Flags().Changed("output") || source == "" {
		return a.cfg.Output, a.cfg.Format
	}
	format := export.FormatFromPath(source)
	if cmd.Flags().Changed("format") {
		format = a.cfg.Format
	}
	return source, format
}

func (a *app) load(path string) (model.Template, error) {
	tmpl, err := loader.LoadFile(path)
	if err != nil {
		return model.Template{}, err
	}
	a.logger.Debug("template loaded",
		zap.String("path", path),
		zap.Int("pages", len(tmpl.Pages)),
		zap.Int("fields", tmpl.FieldCount()),
	)
	return tmpl, nil
}

func (a *app) fileSink(path string, format export.Format) *export.FileSink {
	return export.NewFileSink(path, export.WithFormat(format), export.WithLogger(a.logger))
}

func (a *app) stdoutSink(cmd *cobra.Command) *export.WriterSink {
	return export.NewWriterSink(cmd.OutOrStdout(), export.WithFormat(a.cfg.Format), export.WithLogger(a.logger))
}

// save writes tmpl to stdout or to path and reports the destination.
func (a *app) save(cmd *cobra.Command, tmpl model.Template, path string, format export.Format, toStdout bool) error {
	if toStdout {
		return a.stdoutSink(cmd).Export(cmd.Context(), tmpl)
	}
	if err := a.fileSink(path, format).Export(cmd.Context(), tmpl); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", path)
	return nil
}

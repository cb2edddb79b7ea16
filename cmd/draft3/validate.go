package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ansel1/merry/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	draft3 "github.com/reoring/draft3"
	"github.com/reoring/draft3/document"
)

// maxDecodeWarnings caps the duplicate key warnings logged per document.
const maxDecodeWarnings = 20

type validateOptions struct {
	mode     draft3.Mode
	maxDepth int
	output   string
	// stdin is the format of documents read from standard input.
	stdin   document.Format
	docOpts document.Options
}

func (e *Executor) newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [instance...]",
		Short: "Validate documents against a schema",
		Long: `Validates each instance document against the schema given with --schema and prints
the resulting document. Without --strict, missing properties that declare a default
are filled in. With no instance arguments, or with "-", the instance is read from stdin
in the --input-format format, falling back to the --output format and then to JSON.

Repeated keys in JSON documents are logged as warnings unless --strict-keys rejects them.`,
		Example:      "  draft3 validate -s service.schema.json service.json\n  cat config.yaml | draft3 validate -s schema.yaml --output yaml -",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if e.v.GetString(keySchema) == "" {
				return merry.New("a schema is required: pass --schema or set $DRAFT3_SCHEMA")
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := e.validateOptions()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				args = []string{"-"}
			}

			return e.runValidate(cmd, e.v.GetString(keySchema), args, opts)
		},
	}

	f := cmd.Flags()
	f.StringP(keySchema, "s", "", "schema document (JSON or YAML)")
	f.Bool(keyStrict, false, "do not inject defaults and check embedded $schema mappings")
	f.Int(keyMaxDepth, draft3.DefaultMaxDepth, "maximum schema nesting followed during validation")
	f.StringP(keyOutput, "o", "", "output format: json | yaml (defaults to the input format)")
	f.String(keyInput, "", "format of documents read from stdin: json | yaml (defaults to --output, then json)")
	f.Bool(keyStrictKeys, false, "reject JSON documents that repeat a key within one object")

	annotateEnv(f)

	return cmd
}

func (e *Executor) validateOptions() (*validateOptions, error) {
	opts := &validateOptions{
		maxDepth: e.v.GetInt(keyMaxDepth),
		output:   e.v.GetString(keyOutput),
		stdin:    document.FormatJSON,
		docOpts: document.Options{
			RejectDuplicateKeys: e.v.GetBool(keyStrictKeys),
			WarnDuplicateKeys:   true,
			MaxWarnings:         maxDecodeWarnings,
		},
	}

	if e.v.GetBool(keyStrict) {
		opts.mode = draft3.ModeStrict
	}

	if opts.maxDepth <= 0 {
		return nil, merry.Errorf("--max-depth must be positive, got %d", opts.maxDepth)
	}

	if opts.output != "" {
		f, err := document.ParseFormat(opts.output)
		if err != nil {
			return nil, err
		}
		opts.stdin = f
	}

	if in := e.v.GetString(keyInput); in != "" {
		f, err := document.ParseFormat(in)
		if err != nil {
			return nil, merry.Prepend(err, "--input-format")
		}
		opts.stdin = f
	}

	return opts, nil
}

func (e *Executor) runValidate(cmd *cobra.Command, schemaPath string, instances []string, opts *validateOptions) error {
	raw, err := e.readDocument(cmd, schemaPath, opts)
	if err != nil {
		return err
	}

	schema, ok := draft3.AsSchema(raw)
	if !ok {
		return merry.Errorf("%s: schema must be an object", schemaPath)
	}

	// One validator for the whole run: ids registered by the first document
	// stay resolvable for the following ones.
	validator := draft3.New(draft3.Options{
		Mode:     opts.mode,
		MaxDepth: opts.maxDepth,
		Logger:   e.log,
	})

	for _, path := range instances {
		instance, err := e.readDocument(cmd, path, opts)
		if err != nil {
			return err
		}

		e.log.Debug("validating", slog.String("instance", path), slog.String("schema", schemaPath), slog.String("mode", opts.mode.String()))

		out, err := validator.Validate(instance, schema)
		if err != nil {
			if iss, ok := draft3.AsIssues(err); ok {
				it := iss.First()
				fmt.Fprintln(cmd.ErrOrStderr(), pterm.Error.Sprint(fmt.Sprintf("%s %s: %s", path, it.Path, it.Message)))

				return merry.Wrap(err, merry.WithMessagef("%s: validation failed (%s)", path, it.Code))
			}

			return merry.Wrap(err)
		}

		format := document.FormatFor(path)
		if path == "-" {
			format = opts.stdin
		}
		if opts.output != "" {
			format, _ = document.ParseFormat(opts.output)
		}

		data, err := document.Encode(out, format)
		if err != nil {
			return err
		}

		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return merry.Wrap(err)
		}

		fmt.Fprintln(cmd.ErrOrStderr(), pterm.Success.Sprint(path+": valid"))
	}

	return nil
}

// readDocument loads path, reading the command's stdin for "-" so the
// command stays testable. Decode warnings go to the log.
func (e *Executor) readDocument(cmd *cobra.Command, path string, opts *validateOptions) (any, error) {
	docOpts := opts.docOpts
	docOpts.OnWarning = func(w document.Warning) {
		e.log.Warn(w.Message, slog.String("document", path), slog.String("code", w.Code), slog.String("path", w.Path))
	}

	if path != "-" {
		return document.Load(path, docOpts)
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, merry.Errorf("reading stdin: %w", err)
	}

	v, err := document.Decode(data, opts.stdin, docOpts)
	if err != nil {
		return nil, merry.Errorf("stdin: %w", err)
	}

	return v, nil
}

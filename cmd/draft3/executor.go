package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/ansel1/merry/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/reoring/draft3/i18n"
)

// EnvPrefix is prepended to every flag when it is read from the environment,
// e.g. --max-depth becomes DRAFT3_MAX_DEPTH.
const EnvPrefix = "DRAFT3"

// Config keys shared by flags and environment variables.
const (
	keyLogLevel   = "log-level"
	keyLang       = "lang"
	keyNoColor    = "no-color"
	keySchema     = "schema"
	keyStrict     = "strict"
	keyMaxDepth   = "max-depth"
	keyOutput     = "output"
	keyInput      = "input-format"
	keyStrictKeys = "strict-keys"
)

type Executor struct {
	v       *viper.Viper
	rootCmd *cobra.Command
	log     *slog.Logger
}

func NewExecutor() *Executor {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	e := &Executor{
		v:   v,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	e.rootCmd = e.newRoot()

	return e
}

func (e *Executor) Execute(ctx context.Context) error {
	return e.rootCmd.ExecuteContext(ctx)
}

func (e *Executor) Log() *slog.Logger {
	return e.log
}

// annotateEnv documents the environment variable matching each flag of fs.
func annotateEnv(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		f.Usage += fmt.Sprintf(` [$%s]`, envName(f.Name))
	})
}

func envName(key string) string {
	return strings.ToUpper(EnvPrefix + "_" + strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

// bindFlags binds the flags of the command being run, inherited ones
// included. Commands share key names, so binding happens per invocation
// rather than at construction.
func (e *Executor) bindFlags(cmd *cobra.Command) error {
	if err := e.v.BindPFlags(cmd.Flags()); err != nil {
		return merry.Wrap(err)
	}

	return nil
}

func (e *Executor) setupLogging(cmd *cobra.Command) error {
	var lvl slog.Level

	if err := lvl.UnmarshalText([]byte(e.v.GetString(keyLogLevel))); err != nil {
		return merry.Errorf("unknown log level %q: use debug | info | warn | error", e.v.GetString(keyLogLevel))
	}

	e.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))

	if e.v.GetBool(keyNoColor) {
		pterm.DisableColor()
	} else {
		pterm.EnableColor()
	}

	lang := e.v.GetString(keyLang)
	if !slices.Contains(i18n.Languages(), lang) {
		return merry.Errorf("unsupported language %q: use one of %s", lang, strings.Join(i18n.Languages(), ", "))
	}

	i18n.SetLanguage(lang)

	return nil
}

func (e *Executor) newRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "draft3",
		Short:         "Validate JSON and YAML documents against draft-3 schemas",
		Long:          pterm.Sprintf("%s - validate documents against JSON Schema draft-3 and fill in defaults.", pterm.Bold.Sprint("draft3")),
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.bindFlags(cmd); err != nil {
				return err
			}

			return e.setupLogging(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.String(keyLogLevel, "warn", "set logging level: debug | info | warn | error")
	f.String(keyLang, "en", "language of validation messages: "+strings.Join(i18n.Languages(), " | "))
	f.Bool(keyNoColor, false, "disable color output")

	annotateEnv(f)

	cmd.AddCommand(
		e.newValidateCmd(),
		e.newServeCmd(),
	)

	return cmd
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	draft3 "github.com/reoring/draft3"
	"github.com/reoring/draft3/middleware"
)

const (
	keyAddr            = "addr"
	keyShutdownTimeout = "shutdown-timeout"
)

func (e *Executor) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve schema validation over HTTP",
		Long: `Starts an HTTP server that validates JSON bodies POSTed to /validate against the schema
given with --schema. Valid documents are echoed back with defaults filled in; invalid ones
get 422 with the issue list.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schemaPath := e.v.GetString(keySchema)
			if schemaPath == "" {
				return merry.New("a schema is required: pass --schema or set $DRAFT3_SCHEMA")
			}

			opts, err := e.validateOptions()
			if err != nil {
				return err
			}

			raw, err := e.readDocument(cmd, schemaPath, opts)
			if err != nil {
				return err
			}

			schema, ok := draft3.AsSchema(raw)
			if !ok {
				return merry.Errorf("%s: schema must be an object", schemaPath)
			}

			srv := &http.Server{
				Addr:              e.v.GetString(keyAddr),
				Handler:           e.newRouter(schema, opts),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)

			go func() {
				errCh <- srv.ListenAndServe()
			}()

			pterm.Info.Println("listening on", srv.Addr)

			select {
			case err := <-errCh:
				return merry.Wrap(err)
			case <-cmd.Context().Done():
			}

			e.log.Info("shutting down", slog.String("addr", srv.Addr))

			ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), e.v.GetDuration(keyShutdownTimeout))
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return merry.Wrap(err)
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.StringP(keySchema, "s", "", "schema document (JSON or YAML)")
	f.String(keyAddr, ":8080", "listen address")
	f.Bool(keyStrict, false, "do not inject defaults and check embedded $schema mappings")
	f.Int(keyMaxDepth, draft3.DefaultMaxDepth, "maximum schema nesting followed during validation")
	f.Bool(keyStrictKeys, true, "reject bodies that repeat a key within one object")
	f.Duration(keyShutdownTimeout, 10*time.Second, "grace period for in-flight requests on shutdown")

	annotateEnv(f)

	return cmd
}

func (e *Executor) newRouter(schema draft3.Schema, opts *validateOptions) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.With(middleware.ValidateJSON(schema, middleware.Options{
		Validator: draft3.Options{
			Mode:     opts.mode,
			MaxDepth: opts.maxDepth,
			Logger:   e.log,
		},
		AllowDuplicateKeys: !opts.docOpts.RejectDuplicateKeys,
	})).Post("/validate", func(w http.ResponseWriter, r *http.Request) {
		dm, _ := middleware.DecodedFromContext(r.Context())

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(dm.Value); err != nil {
			e.log.Error("writing response", slog.String("error", err.Error()))
		}
	})

	return r
}

// Package middleware validates JSON request bodies against a draft-3 schema
// at HTTP boundaries.
package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	draft3 "github.com/reoring/draft3"
	"github.com/reoring/draft3/document"
)

// DefaultMaxBodyBytes caps request bodies read by ValidateJSON.
const DefaultMaxBodyBytes = 1 << 20

type ctxKeyDecoded struct{}

// ContextWithDecoded attaches a validated document to the context.
func ContextWithDecoded(ctx context.Context, dm draft3.Decoded) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded{}, dm)
}

// DecodedFromContext retrieves the document stored by ValidateJSON.
func DecodedFromContext(ctx context.Context) (draft3.Decoded, bool) {
	dm, ok := ctx.Value(ctxKeyDecoded{}).(draft3.Decoded)
	return dm, ok
}

// Options configures ValidateJSON. The zero value validates interactively
// (defaults are filled in) and rejects duplicate keys.
type Options struct {
	Validator    draft3.Options
	MaxBodyBytes int64
	// AllowDuplicateKeys accepts bodies that repeat a key; the last one wins.
	AllowDuplicateKeys bool
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []draft3.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// ValidateJSON decodes the request body, validates it against schema and
// stores the result for DecodedFromContext. Bodies over MaxBodyBytes get 413
// and other read or decode failures 400. Validation failures get 422 with the
// issue list.
//
// A fresh Validator is used per request, so ids registered while handling one
// request are not visible to another.
func ValidateJSON(schema draft3.Schema, opts ...Options) func(http.Handler) http.Handler {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxBodyBytes <= 0 {
		opt.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, opt.MaxBodyBytes))
			if err != nil {
				status := http.StatusBadRequest
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					status = http.StatusRequestEntityTooLarge
				}
				writeJSON(w, status, map[string]any{"error": err.Error()})
				return
			}

			instance, err := document.DecodeJSON(data, document.Options{RejectDuplicateKeys: !opt.AllowDuplicateKeys})
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}

			dm, err := draft3.New(opt.Validator).ValidateWithMeta(instance, schema)
			if err != nil {
				if iss, ok := draft3.AsIssues(err); ok {
					writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(iss))
					return
				}
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), dm)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	draft3 "github.com/reoring/draft3"
	"github.com/reoring/draft3/middleware"
)

var orderSchema = draft3.Schema{
	"properties": map[string]any{
		"sku":      map[string]any{"type": "string", "required": true},
		"quantity": map[string]any{"type": "integer", "minimum": 1, "default": 1},
	},
	"additionalProperties": false,
}

func newRouter(opts ...middleware.Options) http.Handler {
	r := chi.NewRouter()
	r.With(middleware.ValidateJSON(orderSchema, opts...)).Post("/orders", func(w http.ResponseWriter, r *http.Request) {
		dm, ok := middleware.DecodedFromContext(r.Context())
		if !ok {
			http.Error(w, "no document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-Defaulted", strings.Join(dm.Presence.Paths(draft3.PresenceDefaultApplied), ","))
		_ = json.NewEncoder(w).Encode(dm.Value)
	})
	return r
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestValidateJSON_PassesDefaultedDocument(t *testing.T) {
	rec := post(t, newRouter(), `{"sku":"A-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"sku":"A-1","quantity":1}`, rec.Body.String())
	assert.Equal(t, "/quantity", rec.Header().Get("X-Defaulted"))
}

func TestValidateJSON_RejectsInvalidDocument(t *testing.T) {
	rec := post(t, newRouter(), `{"sku":"A-1","quantity":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload struct {
		Issues []draft3.Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Issues, 1)
	assert.Equal(t, draft3.CodeBelowMinimum, payload.Issues[0].Code)
	assert.Equal(t, "/quantity", payload.Issues[0].Path)
}

func TestValidateJSON_MalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"syntax", `{"sku":`, http.StatusBadRequest},
		{"duplicate keys", `{"sku":"a","sku":"b"}`, http.StatusBadRequest},
		{"unexpected property", `{"sku":"a","color":"red"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newRouter(), tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestValidateJSON_Options(t *testing.T) {
	rec := post(t, newRouter(middleware.Options{AllowDuplicateKeys: true}), `{"sku":"a","sku":"b"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sku":"b","quantity":1}`, rec.Body.String())

	rec = post(t, newRouter(middleware.Options{Validator: draft3.Options{Mode: draft3.ModeStrict}}), `{"sku":"a"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sku":"a"}`, rec.Body.String())

	rec = post(t, newRouter(middleware.Options{MaxBodyBytes: 4}), `{"sku":"a"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestValidateJSON_UnreadableBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/orders", iotest.ErrReader(errors.New("connection reset")))
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection reset")
}

func TestDecodedFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := middleware.DecodedFromContext(req.Context())
	assert.False(t, ok)
}

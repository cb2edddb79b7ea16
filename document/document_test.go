package document

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_KeepsNumberLiterals(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"i":5,"f":5.0,"list":[1,"a",null,true]}`))
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, json.Number("5"), m["i"])
	assert.Equal(t, json.Number("5.0"), m["f"])
	assert.Equal(t, []any{json.Number("1"), "a", nil, true}, m["list"])
}

func TestDecodeJSON_Errors(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"a":`))
	assert.Error(t, err)

	_, err = DecodeJSON([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)

	_, err = DecodeJSON([]byte(`{"a":1,"a":2}`), Options{RejectDuplicateKeys: true})
	assert.ErrorContains(t, err, "duplicated")

	v, err := DecodeJSON([]byte(`{"a":1,"a":2}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("2"), v.(map[string]any)["a"])

	_, err = DecodeJSON([]byte(`[[[1]]]`), Options{MaxDepth: 2})
	assert.ErrorContains(t, err, "max depth exceeded")
}

func TestDecodeJSON_WarnDuplicateKeys(t *testing.T) {
	var got []Warning
	opts := Options{WarnDuplicateKeys: true, OnWarning: func(w Warning) { got = append(got, w) }}

	v, err := DecodeJSON([]byte(`{"a":1,"a":2,"b":{"c":1,"c":2}}`), opts)
	require.NoError(t, err)
	assert.Equal(t, json.Number("2"), v.(map[string]any)["a"])
	require.Len(t, got, 2)
	assert.Equal(t, Warning{Code: CodeDuplicateKey, Path: "/a", Message: "key 'a' duplicated"}, got[0])
	assert.Equal(t, "/b/c", got[1].Path)

	got = nil
	opts.MaxWarnings = 1
	_, err = DecodeJSON([]byte(`{"a":1,"a":2,"b":1,"b":2,"c":1,"c":2}`), opts)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "/a", got[0].Path)
	assert.Equal(t, CodeWarningsTruncated, got[1].Code)

	got = nil
	opts.MaxDepth = 2
	_, err = DecodeJSON([]byte(`{"a":1,"a":2,"b":1,"b":2,"c":[[1]]}`), opts)
	assert.ErrorContains(t, err, "max depth exceeded")

	_, err = DecodeJSON([]byte(`{"a":`), opts)
	assert.ErrorContains(t, err, "invalid JSON")

	got = nil
	_, err = DecodeJSON([]byte(`{"a":1,"a":2}`), Options{RejectDuplicateKeys: true, WarnDuplicateKeys: true, OnWarning: opts.OnWarning})
	assert.ErrorContains(t, err, "duplicated")
	assert.Empty(t, got)
}

func TestDecodeYAML_Normalizes(t *testing.T) {
	v, err := DecodeYAML([]byte("name: x\ncount: 3\nnested:\n  list: [1, two]\n"))
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, "x", m["name"])
	assert.Equal(t, 3, m["count"])
	assert.Equal(t, []any{1, "two"}, m["nested"].(map[string]any)["list"])

	v, err = DecodeYAML(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("a/b.YML"))
	assert.Equal(t, FormatJSON, FormatFor("schema.json"))
	assert.Equal(t, FormatJSON, FormatFor("-"))

	f, err := ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = ParseFormat("toml")
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	v := map[string]any{"b": json.Number("1.5"), "a": []any{json.Number("2")}}

	out, err := Encode(v, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    2\n  ],\n  \"b\": 1.5\n}\n", string(out))

	out, err = Encode(v, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "a:\n    - 2\nb: 1.5\n", string(out))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(p, []byte("a: 1\n"), 0o644))

	v, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, v)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestDecodeYAML_RejectDuplicateKeys(t *testing.T) {
	src := []byte("server:\n  port: 80\n  port: 81\n")

	v, err := Decode(src, FormatYAML)
	require.Error(t, err, "yaml.v3 refuses repeated keys on its own")
	assert.Nil(t, v)

	_, err = Decode(src, FormatYAML, Options{RejectDuplicateKeys: true})
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "/server", dup.Path)
	assert.Equal(t, "port", dup.Key)
	assert.Equal(t, 2, dup.FirstLine)
	assert.Equal(t, 3, dup.Line)
	assert.Equal(t, `/server: duplicate YAML key "port" at 3:3 (first at 2:3)`, dup.Error())
}

func TestDecodeYAML_StrictMatchesPlain(t *testing.T) {
	src := []byte("base: &b {x: 1}\nname: svc\nratio: 0.5\ntags: [a, ~, true]\ncopy: *b\n")

	plain, err := Decode(src, FormatYAML)
	require.NoError(t, err)
	strict, err := Decode(src, FormatYAML, Options{RejectDuplicateKeys: true})
	require.NoError(t, err)
	assert.Equal(t, plain, strict)
	assert.Equal(t, map[string]any{"x": 1}, strict.(map[string]any)["copy"])

	empty, err := Decode(nil, FormatYAML, Options{RejectDuplicateKeys: true})
	require.NoError(t, err)
	assert.Nil(t, empty)
}

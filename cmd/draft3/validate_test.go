package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	draft3 "github.com/reoring/draft3"
	"github.com/reoring/draft3/i18n"
)

const serviceSchema = `{
  "properties": {
    "name": {"type": "string", "required": true},
    "port": {"type": "integer", "default": 8080, "minimum": 1}
  },
  "additionalProperties": false
}`

type runResult struct {
	stdout, stderr string
	err            error
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	t.Cleanup(func() { i18n.SetLanguage("en") })

	e := NewExecutor()
	var stdout, stderr bytes.Buffer
	e.rootCmd.SetArgs(append([]string{"--no-color"}, args...))
	e.rootCmd.SetOut(&stdout)
	e.rootCmd.SetErr(&stderr)
	e.rootCmd.SetIn(strings.NewReader(stdin))

	err := e.Execute(context.Background())
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestValidate_InjectsDefaults(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json", serviceSchema)
	instance := writeFile(t, dir, "svc.json", `{"name":"api"}`)

	res := run(t, "", "validate", "-s", schema, instance)
	require.NoError(t, res.err, res.stderr)
	assert.JSONEq(t, `{"name":"api","port":8080}`, res.stdout)
	assert.Contains(t, res.stderr, instance+": valid")
}

func TestValidate_StrictLeavesDocumentAlone(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json", serviceSchema)
	instance := writeFile(t, dir, "svc.json", `{"name":"api"}`)

	res := run(t, "", "validate", "--strict", "-s", schema, instance)
	require.NoError(t, res.err)
	assert.JSONEq(t, `{"name":"api"}`, res.stdout)
}

func TestValidate_StrictFromEnvironment(t *testing.T) {
	t.Setenv("DRAFT3_STRICT", "true")
	dir := t.TempDir()
	t.Setenv("DRAFT3_SCHEMA", writeFile(t, dir, "schema.json", serviceSchema))
	instance := writeFile(t, dir, "svc.json", `{"name":"api"}`)

	res := run(t, "", "validate", instance)
	require.NoError(t, res.err)
	assert.JSONEq(t, `{"name":"api"}`, res.stdout)
}

func TestValidate_ReportsFirstIssue(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json", serviceSchema)
	good := writeFile(t, dir, "good.json", `{"name":"a"}`)
	bad := writeFile(t, dir, "bad.json", `{"name":"b","port":0}`)
	never := writeFile(t, dir, "never.json", `{}`)

	res := run(t, "", "validate", "-s", schema, good, bad, never)
	require.Error(t, res.err)
	assert.True(t, draft3.HasCode(res.err, draft3.CodeBelowMinimum))
	assert.Contains(t, res.err.Error(), bad+": validation failed (below_minimum)")
	assert.Contains(t, res.stderr, bad+" /port: port: must have a minimum value of 1")
	assert.NotContains(t, res.stderr, never)
	assert.JSONEq(t, `{"name":"a","port":8080}`, res.stdout, "documents before the failure are still printed")
}

func TestValidate_Japanese(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json", serviceSchema)
	instance := writeFile(t, dir, "svc.json", `{}`)

	res := run(t, "", "--lang", "ja", "validate", "-s", schema, instance)
	require.Error(t, res.err)
	assert.True(t, draft3.HasCode(res.err, draft3.CodeMissingRequired))
	assert.Contains(t, res.stderr, "name: "+i18nJA(t, draft3.CodeMissingRequired))
}

func i18nJA(t *testing.T, code string) string {
	t.Helper()
	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	return i18n.T(code, nil)
}

func TestValidate_StdinAndYAMLOutput(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", `
properties:
  name: {type: string, required: true}
  replicas: {type: integer, default: 2}
`)

	res := run(t, `{"name":"worker"}`, "validate", "-s", schema, "--output", "yaml")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "name: worker\nreplicas: 2\n", res.stdout)
	assert.Contains(t, res.stderr, "-: valid")
}

func TestValidate_YAMLStdin(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", `
properties:
  name: {type: string, required: true}
  replicas: {type: integer, default: 2}
`)

	res := run(t, "name: api\n", "validate", "-s", schema, "--output", "yaml", "-")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "name: api\nreplicas: 2\n", res.stdout)

	res = run(t, "name: api\n", "validate", "-s", schema, "--input-format", "yaml")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "name: api\nreplicas: 2\n", res.stdout, "output follows the stdin format")

	res = run(t, "name: api\n", "validate", "-s", schema, "--input-format", "yaml", "--output", "json")
	require.NoError(t, res.err, res.stderr)
	assert.JSONEq(t, `{"name":"api","replicas":2}`, res.stdout)

	res = run(t, "name: api\n", "validate", "-s", schema)
	require.Error(t, res.err, "stdin defaults to JSON")
	assert.Contains(t, res.err.Error(), "stdin: invalid JSON")
}

func TestValidate_YAMLInstanceKeepsFormat(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json", serviceSchema)
	instance := writeFile(t, dir, "svc.yml", "name: api\nport: 9000\n")

	res := run(t, "", "validate", "-s", schema, instance)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "name: api\nport: 9000\n", res.stdout)
}

func TestValidate_StrictKeys(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json", serviceSchema)
	instance := writeFile(t, dir, "dup.json", `{"name":"a","name":"b"}`)

	res := run(t, "", "validate", "-s", schema, instance)
	require.NoError(t, res.err, "duplicates are accepted unless --strict-keys is set")
	assert.Contains(t, res.stderr, "level=WARN")
	assert.Contains(t, res.stderr, "code=duplicate_key path=/name")
	assert.JSONEq(t, `{"name":"b","port":8080}`, res.stdout)

	res = run(t, "", "--log-level", "error", "validate", "-s", schema, instance)
	require.NoError(t, res.err)
	assert.NotContains(t, res.stderr, "duplicate_key")

	res = run(t, "", "validate", "--strict-keys", "-s", schema, instance)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "/name")
}

func TestValidate_BadInvocations(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json", serviceSchema)
	notObject := writeFile(t, dir, "list.json", `[1]`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing schema", []string{"validate", "x.json"}, "a schema is required"},
		{"schema not an object", []string{"validate", "-s", notObject, "x.json"}, "schema must be an object"},
		{"unknown output", []string{"validate", "-s", schema, "--output", "toml", "x.json"}, "unknown format"},
		{"unknown input format", []string{"validate", "-s", schema, "--input-format", "toml"}, "--input-format: unknown format"},
		{"bad depth", []string{"validate", "-s", schema, "--max-depth", "0", "x.json"}, "--max-depth must be positive"},
		{"bad language", []string{"--lang", "fr", "validate", "-s", schema, "x.json"}, "unsupported language"},
		{"bad log level", []string{"--log-level", "loud", "validate", "-s", schema, "x.json"}, "unknown log level"},
		{"missing instance", []string{"validate", "-s", schema, filepath.Join(dir, "absent.json")}, "absent.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "", tt.args...)
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), tt.want)
		})
	}
}

func TestValidate_DebugLogging(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json", serviceSchema)
	instance := writeFile(t, dir, "svc.json", `{"name":"api"}`)

	res := run(t, "", "--log-level", "debug", "validate", "-s", schema, instance)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "msg=validating")
	assert.Contains(t, res.stderr, "msg=\"applied default\"")
	assert.Contains(t, res.stderr, "path=/port")
}

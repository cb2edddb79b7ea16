// Package document turns JSON and YAML bytes into the instance trees the
// validator works on, and renders validated trees back.
//
// JSON is decoded with numbers kept as json.Number so integer and decimal
// literals stay distinguishable.
package document

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ansel1/merry/v2"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	eng "github.com/reoring/draft3/internal/engine"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", merry.Errorf("unknown format %q: must be %q or %q", s, FormatJSON, FormatYAML)
	}
}

// FormatFor picks a format from a file extension; anything that is not
// .yaml/.yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Options controls decoding.
type Options struct {
	// RejectDuplicateKeys fails input that repeats a key in one object or
	// mapping.
	RejectDuplicateKeys bool
	// MaxDepth rejects JSON nested deeper than this; zero disables.
	MaxDepth int
	// WarnDuplicateKeys reports repeated JSON keys to OnWarning instead of
	// silently keeping the last one. RejectDuplicateKeys takes precedence.
	WarnDuplicateKeys bool
	// MaxWarnings caps the warnings reported per document; zero means
	// unlimited. When the cap is hit a final CodeWarningsTruncated warning
	// is reported.
	MaxWarnings int
	OnWarning   func(Warning)
}

// Warning is a non-fatal finding made while decoding.
type Warning struct {
	Code    string
	Path    string
	Message string
}

// Warning codes.
const (
	CodeDuplicateKey      = "duplicate_key"
	CodeWarningsTruncated = "warnings_truncated"
)

func lastOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[len(opts)-1]
}

// Decode decodes data in the given format.
func Decode(data []byte, f Format, opts ...Options) (any, error) {
	if f == FormatYAML {
		if lastOptions(opts).RejectDuplicateKeys {
			return decodeYAMLStrict(data)
		}
		return DecodeYAML(data)
	}
	return DecodeJSON(data, opts...)
}

// DecodeJSON decodes a single JSON value.
func DecodeJSON(data []byte, opts ...Options) (any, error) {
	opt := lastOptions(opts)
	warn := opt.WarnDuplicateKeys && opt.OnWarning != nil
	if opt.RejectDuplicateKeys || warn || opt.MaxDepth > 0 {
		if err := scanJSON(data, opt, warn); err != nil {
			return nil, err
		}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, merry.Errorf("invalid JSON: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, merry.New("invalid JSON: unexpected data after the top-level value")
	}
	return v, nil
}

func scanJSON(data []byte, opt Options, warn bool) error {
	so := eng.ScanOptions{OnDuplicate: eng.DupIgnore, MaxDepth: opt.MaxDepth}
	switch {
	case opt.RejectDuplicateKeys:
		so.OnDuplicate = eng.DupError
	case warn:
		so.OnDuplicate = eng.DupWarn
		so.MaxIssues = -1
		if opt.MaxWarnings > 0 {
			so.MaxIssues = opt.MaxWarnings
		}
	}
	issues, err := eng.ScanBytes(data, so)
	for _, si := range issues {
		opt.OnWarning(Warning{Code: si.Code, Path: si.Path, Message: si.Message})
	}
	if errors.Is(err, eng.ErrIssueLimit) {
		opt.OnWarning(Warning{Code: CodeWarningsTruncated, Path: "/", Message: "further duplicate keys not reported"})
		if opt.MaxDepth == 0 {
			return nil
		}
		// The truncated scan stopped early; finish the depth check.
		_, err = eng.ScanBytes(data, eng.ScanOptions{MaxDepth: opt.MaxDepth})
	}
	var ie eng.IssueError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ie):
		return merry.Wrap(err)
	default:
		return merry.Errorf("invalid JSON: %w", err)
	}
}

// DecodeYAML decodes the first document of a YAML stream. Mappings are
// normalized to map[string]any; non-string keys are dropped.
func DecodeYAML(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var node any
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, merry.Errorf("invalid YAML: %w", err)
	}
	return normalizeYAML(node), nil
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeYAML(t[i])
		}
		return arr
	default:
		return v
	}
}

// Load reads and decodes a file; "-" reads standard input. The format comes
// from the file extension.
func Load(path string, opts ...Options) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, merry.Errorf("reading %s: %w", path, err)
	}
	v, err := Decode(data, FormatFor(path), opts...)
	if err != nil {
		return nil, merry.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Encode renders v with stable key order.
func Encode(v any, f Format) ([]byte, error) {
	if f == FormatYAML {
		out, err := yaml.Marshal(numbersForYAML(v))
		if err != nil {
			return nil, merry.Wrap(err)
		}
		return out, nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, merry.Wrap(err)
	}
	return append(out, '\n'), nil
}

// numbersForYAML converts json.Number leaves into Go numbers; YAML would
// otherwise quote them as strings.
func numbersForYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = numbersForYAML(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = numbersForYAML(t[i])
		}
		return out
	case stdjson.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return string(t)
	default:
		return v
	}
}

package draft3

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes. The set is closed: every failure produced by the validator
// carries exactly one of these.
const (
	CodeMissingRequired    = "missing_required"
	CodeMissingDependency  = "missing_dependency"
	CodeTypeMismatch       = "type_mismatch"
	CodeUnsupportedType    = "unsupported_type"
	CodeDisallowedValue    = "disallowed_value"
	CodeUnexpectedProperty = "unexpected_property"
	CodeExtraItems         = "extra_items"
	CodeTooFewItems        = "too_few_items"
	CodeTooManyItems       = "too_many_items"
	CodePatternMismatch    = "pattern_mismatch"
	CodeTooShort           = "too_short"
	CodeTooLong            = "too_long"
	CodeBelowMinimum       = "below_minimum"
	CodeAboveMaximum       = "above_maximum"
	CodeTooManyDecimals    = "too_many_decimals"
	CodeNotInEnum          = "not_in_enum"
	CodeInvalidSchema      = "invalid_schema"
	CodeDepthExceeded      = "depth_exceeded"
)

// Issue represents a single validation failure.
type Issue struct {
	Path    string `json:"path"`    // JSON Pointer of the offending value (for example: /items/2/price).
	Key     string `json:"key"`     // Last path fragment; "self" for the root instance.
	Code    string `json:"code"`    // One of the codes listed above.
	Message string `json:"message"`
	// Schema is set when the failure is a schema-authoring error rather than
	// a data violation (invalid additionalProperties, unknown type names, ...).
	Schema bool `json:"schema,omitempty"`
	// Params carries structured parameters (e.g., {"minimum":1, "got":0}) for
	// i18n and diagnostics.
	Params map[string]any `json:"params,omitempty"`
}

func (it Issue) String() string {
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
}

// Issues is a collection of validation errors that implements error.
// Validation stops at the first violation, so issues returned by the
// validator hold a single entry.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// First returns the first issue, or the zero Issue when empty.
func (iss Issues) First() Issue {
	if len(iss) == 0 {
		return Issue{}
	}
	return iss[0]
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// schemaCodes lists codes that always describe schema-authoring errors.
var schemaCodes = map[string]bool{
	CodeUnsupportedType: true,
	CodeInvalidSchema:   true,
}

package draft3

import (
	"fmt"

	"github.com/reoring/draft3/i18n"
)

// IssueAt creates an Issue at the given path with the provided code and params.
// The message is "<key>: <translated text>", rendered through the current
// i18n translator with params as template data.
func IssueAt(p PathRef, code string, params map[string]any) Issue {
	data := make(map[string]string, len(params))
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	it := p.Issue(code, p.Key()+": "+i18n.T(code, data))
	if params != nil {
		it.Params = params
	}
	return it
}

// fail wraps a single issue as the error returned by the checkers.
func fail(p PathRef, code string, params map[string]any) error {
	return AppendIssues(nil, IssueAt(p, code, params))
}

// invalidSchema reports a schema-authoring error.
func invalidSchema(p PathRef, reason string) error {
	return fail(p, CodeInvalidSchema, map[string]any{"reason": reason})
}

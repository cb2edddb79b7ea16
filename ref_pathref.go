package draft3

import (
	"fmt"
	"strconv"
	"strings"
)

// rootKey names the synthetic slot holding the top-level instance.
const rootKey = "self"

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	// Key is the last path fragment, unescaped ("self" at the root).
	Key() string
	Depth() int
	Issue(code, msg string, kv ...any) Issue
}

// RootPath returns the path of the top-level instance.
func RootPath() PathRef { return &pathRef{key: rootKey} }

// ParsePath splits a JSON Pointer into a PathRef. Numeric fragments are kept
// as field names; pointers are only used for reporting.
func ParsePath(path string) PathRef {
	var p PathRef = RootPath()
	if path == "" || path == "/" {
		return p
	}
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		p = p.Field(part)
	}
	return p
}

type pathRef struct {
	parts []string
	key   string
}

func (p *pathRef) Field(name string) PathRef {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &pathRef{parts: append(append([]string{}, p.parts...), esc), key: name}
}

func (p *pathRef) Index(i int) PathRef {
	s := strconv.Itoa(i)
	return &pathRef{parts: append(append([]string{}, p.parts...), s), key: s}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p *pathRef) Key() string { return p.key }

func (p *pathRef) Depth() int { return len(p.parts) }

func (p *pathRef) Issue(code, msg string, kv ...any) Issue {
	m := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return Issue{Path: p.Pointer(), Key: p.key, Code: code, Message: msg, Params: m, Schema: schemaCodes[code]}
}

package draft3

import (
	"fmt"
	"strings"
)

// typeNames maps draft-3 type names to the kinds they accept. "any" maps to
// nil, which accepts every value.
var typeNames = map[string][]Kind{
	"string":  {KindString},
	"integer": {KindInteger},
	"number":  {KindInteger, KindNumber},
	"boolean": {KindBoolean},
	"object":  {KindObject},
	"array":   {KindArray},
	"null":    {KindNull},
	"any":     nil,
}

// resolvedType is a type expression after name resolution: a set of kinds,
// an inline schema, or a list of alternatives tried in order.
type resolvedType struct {
	none   bool // no constraint
	any    bool
	kinds  []Kind
	schema Schema
	alts   []resolvedType
}

// convertType resolves a type expression. Unknown names fail immediately,
// before any alternative is tried. A name matching a schema id registered
// earlier in the traversal resolves to that schema.
func (v *Validator) convertType(expr any, p PathRef) (resolvedType, error) {
	switch t := expr.(type) {
	case nil:
		return resolvedType{none: true}, nil
	case bool:
		if !t {
			return resolvedType{none: true}, nil
		}
	case string:
		if kinds, ok := typeNames[t]; ok {
			return resolvedType{any: kinds == nil, kinds: kinds}, nil
		}
		if s, ok := v.refs[t]; ok {
			return resolvedType{schema: s}, nil
		}
	case []any:
		alts := make([]resolvedType, 0, len(t))
		for _, e := range t {
			rt, err := v.convertType(e, p)
			if err != nil {
				return resolvedType{}, err
			}
			alts = append(alts, rt)
		}
		return resolvedType{alts: alts}, nil
	default:
		if s, ok := AsSchema(t); ok {
			return resolvedType{schema: s}, nil
		}
	}
	return resolvedType{}, fail(p, CodeUnsupportedType, map[string]any{"type": fmt.Sprint(expr)})
}

// checkType checks value against a type expression.
func (v *Validator) checkType(value, expr any, p PathRef, parent container) error {
	rt, err := v.convertType(expr, p)
	if err != nil {
		return err
	}
	return v.matchType(value, rt, expr, p, parent)
}

func (v *Validator) matchType(value any, rt resolvedType, expr any, p PathRef, parent container) error {
	switch {
	case rt.none, rt.any:
		return nil
	case rt.schema != nil:
		return v.checkProperty(present(value), rt.schema, p, parent)
	case rt.alts != nil:
		for _, alt := range rt.alts {
			err := v.matchType(value, alt, expr, p, parent)
			if err == nil {
				return nil
			}
			if !isMismatch(err) {
				return err
			}
		}
		return mismatch(value, expr, p)
	}
	got := KindOf(value)
	for _, k := range rt.kinds {
		if got == k || (k == KindNumber && got == KindInteger) {
			return nil
		}
	}
	return mismatch(value, expr, p)
}

func mismatch(value, expr any, p PathRef) error {
	return fail(p, CodeTypeMismatch, map[string]any{"got": describe(value), "expected": typeLabel(expr)})
}

// typeLabel renders a type expression for messages.
func typeLabel(expr any) string {
	switch t := expr.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = typeLabel(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		if s, ok := AsSchema(t); ok {
			if id := s.ID(); id != "" {
				return id
			}
			return "schema"
		}
		return fmt.Sprint(expr)
	}
}

// isMismatch reports whether err is a data violation that an alternative
// or a disallow check may absorb. Schema-authoring errors and depth
// overflows always propagate.
func isMismatch(err error) bool {
	iss, ok := AsIssues(err)
	if !ok || len(iss) == 0 {
		return false
	}
	first := iss.First()
	return !first.Schema && first.Code != CodeDepthExceeded
}

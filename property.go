package draft3

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// checkProperty validates the value found under p inside parent against s.
// A nil schema accepts anything.
func (v *Validator) checkProperty(val slot, s Schema, p PathRef, parent container) error {
	if s == nil {
		return nil
	}
	v.depth++
	defer func() { v.depth-- }()
	if v.depth > v.maxDepth {
		return fail(p, CodeDepthExceeded, map[string]any{"maxDepth": v.maxDepth})
	}

	v.register(s, p)

	if err := v.checkExtends(val, s, p, parent); err != nil {
		return err
	}
	if err := v.checkRef(val, s, p, parent); err != nil {
		return err
	}
	val = reread(val, p.Key(), parent)

	if !val.present {
		return v.checkAbsent(s, p, parent)
	}
	value := val.value
	v.presence.mark(p, PresenceSeen)

	if t, ok := s.rule(kwType); ok {
		if err := v.checkType(value, t, p, parent); err != nil {
			return err
		}
		value = reread(val, p.Key(), parent).value
	}
	if d, ok := s.rule(kwDisallow); ok {
		err := v.checkType(value, d, p, parent)
		if err == nil {
			return fail(p, CodeDisallowedValue, map[string]any{"disallow": d})
		}
		if !isMismatch(err) {
			return err
		}
		value = reread(val, p.Key(), parent).value
	}

	if value == nil {
		v.presence.mark(p, PresenceWasNull)
		return nil
	}

	kind := KindOf(value)
	if kind == KindArray {
		if err := v.checkArray(value.([]any), s, p, parent); err != nil {
			return err
		}
	} else if props, ok := s.rule(kwProperties); ok {
		def, isSchema := AsSchema(props)
		if !isSchema {
			return invalidSchema(p, "properties must be an object")
		}
		if err := v.checkObject(value, def, s, p); err != nil {
			return err
		}
	} else if s.Has(kwAdditionalProperties) {
		if err := v.checkAdditionalProperties(value, s[kwAdditionalProperties], p); err != nil {
			return err
		}
	}

	if kind == KindString {
		if err := v.checkString(value.(string), s, p); err != nil {
			return err
		}
	}
	if kind.Numeric() {
		if err := checkNumber(value, s, p); err != nil {
			return err
		}
	}

	if e, ok := s.rule(kwEnum); ok {
		if err := checkEnum(value, e, p); err != nil {
			return err
		}
	}
	for _, kw := range []string{kwDescription, kwTitle} {
		if d, ok := s.rule(kw); ok {
			if _, isString := d.(string); !isString {
				return invalidSchema(p, "the "+kw+" must be a string")
			}
		}
	}
	// format is reserved and deliberately unchecked.
	return nil
}

// checkExtends validates the value against the extended schema(s) first.
func (v *Validator) checkExtends(val slot, s Schema, p PathRef, parent container) error {
	ext, ok := s.rule(kwExtends)
	if !ok {
		return nil
	}
	if base, isSchema := AsSchema(ext); isSchema {
		return v.checkProperty(val, base, p, parent)
	}
	list, isList := ext.([]any)
	if !isList {
		return invalidSchema(p, "extends must be a schema or a list of schemas")
	}
	for _, e := range list {
		base, isSchema := AsSchema(e)
		if !isSchema {
			return invalidSchema(p, "extends must be a schema or a list of schemas")
		}
		if err := v.checkProperty(val, base, p, parent); err != nil {
			return err
		}
	}
	return nil
}

// checkRef follows "$ref" to a schema registered earlier in the traversal.
// Unknown references are skipped: no remote or forward resolution happens.
func (v *Validator) checkRef(val slot, s Schema, p PathRef, parent container) error {
	ref, ok := s.str(kwRef)
	if !ok || ref == "" {
		return nil
	}
	target, found := v.refs[ref]
	if !found {
		v.log.Debug("unresolved $ref", slog.String("ref", ref), slog.String("path", p.Pointer()))
		return nil
	}
	return v.checkProperty(val, target, p, parent)
}

// checkAbsent handles a key missing from its parent: required keys fail,
// and interactive mode fills in defaults.
func (v *Validator) checkAbsent(s Schema, p PathRef, parent container) error {
	if s.isTrue(kwRequired) {
		return fail(p, CodeMissingRequired, nil)
	}
	if v.mode != ModeInteractive || parent == nil || parent.contains(p.Key()) {
		return nil
	}
	def, ok := s[kwDefault]
	if !ok || def == nil {
		return nil
	}
	if _, readonly := s.rule(kwReadonly); readonly {
		return nil
	}
	parent.put(p.Key(), cloneValue(def))
	v.presence.mark(p, PresenceDefaultApplied)
	v.log.Debug("applied default", slog.String("path", p.Pointer()), slog.String("key", p.Key()))
	return nil
}

// checkArray covers items (single or tuple), additionalProperties for tuples,
// and minItems/maxItems.
func (v *Validator) checkArray(arr []any, s Schema, p PathRef, parent container) error {
	seq := &sliceContainer{items: arr}
	if items, ok := s.rule(kwItems); ok {
		if tuple, isTuple := items.([]any); isTuple {
			if err := v.checkTuple(seq, tuple, s, p); err != nil {
				return err
			}
		} else {
			elem, isSchema := AsSchema(items)
			if !isSchema {
				return invalidSchema(p, "items must be a schema or a list of schemas")
			}
			for i := range seq.items {
				if err := v.checkProperty(seq.slot(i), elem, p.Index(i), seq); err != nil {
					return err
				}
			}
		}
	}
	if seq.grown && parent != nil {
		parent.put(p.Key(), seq.items)
	}

	n := len(seq.items)
	if lo, ok := s.bound(kwMinItems); ok && n < lo {
		return fail(p, CodeTooFewItems, map[string]any{"minItems": lo, "got": n})
	}
	if hi, ok := s.bound(kwMaxItems); ok && n > hi {
		return fail(p, CodeTooManyItems, map[string]any{"maxItems": hi, "got": n})
	}
	return nil
}

// checkTuple validates positional items. When additionalProperties is a
// schema it applies to every element, not only those past the tuple.
func (v *Validator) checkTuple(seq *sliceContainer, tuple []any, s Schema, p PathRef) error {
	for i, raw := range tuple {
		elem, err := itemSchema(raw, p)
		if err != nil {
			return err
		}
		if err := v.checkProperty(seq.slot(i), elem, p.Index(i), seq); err != nil {
			return err
		}
	}
	if !s.Has(kwAdditionalProperties) {
		return nil
	}
	additional := s[kwAdditionalProperties]
	if s.isFalse(kwAdditionalProperties) {
		if len(tuple) < len(seq.items) {
			return fail(p, CodeExtraItems, map[string]any{"items": len(tuple), "got": len(seq.items)})
		}
		return nil
	}
	rest, err := additionalSchema(additional, p)
	if err != nil || rest == nil {
		return err
	}
	for i := range seq.items {
		if err := v.checkProperty(seq.slot(i), rest, p.Index(i), seq); err != nil {
			return err
		}
	}
	return nil
}

func itemSchema(raw any, p PathRef) (Schema, error) {
	if raw == nil {
		return nil, nil
	}
	s, ok := AsSchema(raw)
	if !ok {
		return nil, invalidSchema(p, "items must be a schema or a list of schemas")
	}
	return s, nil
}

// additionalSchema interprets additionalProperties when it is applied to
// values: true and null impose nothing, a mapping is a schema.
func additionalSchema(raw any, p PathRef) (Schema, error) {
	switch t := raw.(type) {
	case nil, bool:
		return nil, nil
	default:
		s, ok := AsSchema(t)
		if !ok {
			return nil, invalidSchema(p, "additionalProperties must be a boolean or a schema")
		}
		return s, nil
	}
}

// checkAdditionalProperties applies additionalProperties to a mapping with no
// declared properties.
func (v *Validator) checkAdditionalProperties(value any, additional any, p PathRef) error {
	if b, ok := additional.(bool); ok && b {
		return nil
	}
	rest, isSchema := AsSchema(additional)
	isFalse := additional == false
	if !isSchema && !isFalse {
		return invalidSchema(p, "additionalProperties schema definition is not an object")
	}
	m := asMap(value)
	if m == nil {
		return nil
	}
	obj := mapContainer(m)
	for _, k := range sortedKeys(m) {
		if isFalse {
			return fail(p.Field(k), CodeUnexpectedProperty, map[string]any{"property": k})
		}
		if err := v.checkProperty(present(m[k]), rest, p.Field(k), obj); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) checkString(str string, s Schema, p PathRef) error {
	if raw, ok := s.rule(kwPattern); ok {
		expr, isString := raw.(string)
		if !isString {
			return invalidSchema(p, "pattern must be a string")
		}
		re, err := v.pattern(expr)
		if err != nil {
			return invalidSchema(p, fmt.Sprintf("pattern %q does not compile: %v", expr, err))
		}
		if !re.MatchString(str) {
			return fail(p, CodePatternMismatch, map[string]any{"pattern": expr})
		}
	}
	n := utf8.RuneCountInString(str)
	if hi, ok := s.bound(kwMaxLength); ok && n > hi {
		return fail(p, CodeTooLong, map[string]any{"maxLength": hi, "got": n})
	}
	if lo, ok := s.bound(kwMinLength); ok && n < lo {
		return fail(p, CodeTooShort, map[string]any{"minLength": lo, "got": n})
	}
	return nil
}

// checkNumber applies minimum/maximum and maxDecimal. Bounds are inclusive
// unless the matching *CanEqual key is present and not true.
func checkNumber(num any, s Schema, p PathRef) error {
	if lo, ok := s.numberRule(kwMinimum); ok {
		c, _ := compareNumbers(num, lo)
		if c < 0 || (c == 0 && !canEqual(s, kwMinimumCanEqual)) {
			return fail(p, CodeBelowMinimum, map[string]any{"minimum": lo, "got": num})
		}
	}
	if hi, ok := s.numberRule(kwMaximum); ok {
		c, _ := compareNumbers(num, hi)
		if c > 0 || (c == 0 && !canEqual(s, kwMaximumCanEqual)) {
			return fail(p, CodeAboveMaximum, map[string]any{"maximum": hi, "got": num})
		}
	}
	if md, ok := s.numberRule(kwMaxDecimal); ok {
		limit, _ := asInt(md)
		if fractionDigits(num) > limit {
			return fail(p, CodeTooManyDecimals, map[string]any{"maxDecimal": limit, "got": num})
		}
	}
	return nil
}

func canEqual(s Schema, key string) bool {
	if !s.Has(key) {
		return true
	}
	_, ok := s.rule(key)
	return ok
}

func checkEnum(value, raw any, p PathRef) error {
	options, ok := raw.([]any)
	if !ok {
		return invalidSchema(p, "enum must be an array")
	}
	for _, o := range options {
		if Equal(value, o) {
			return nil
		}
	}
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = fmt.Sprint(o)
	}
	return fail(p, CodeNotInEnum, map[string]any{"enum": strings.Join(names, ", ")})
}

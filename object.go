package draft3

import (
	"log/slog"
	"sort"
	"strings"
)

// reservedPrefix marks property names the object checker skips.
const reservedPrefix = "__"

// checkObject validates a mapping against declared properties. The parent
// schema s supplies additionalProperties. Keys are visited in sorted order so
// the first reported violation is deterministic.
func (v *Validator) checkObject(value any, props Schema, s Schema, p PathRef) error {
	m := asMap(value)
	if m == nil {
		return fail(p, CodeTypeMismatch, map[string]any{"got": describe(value), "expected": "object"})
	}
	obj := mapContainer(m)

	for _, name := range sortedKeys(props) {
		if strings.HasPrefix(name, reservedPrefix) {
			continue
		}
		def, err := propertySchema(props[name], p.Field(name))
		if err != nil {
			return err
		}
		if err := v.checkProperty(obj.slot(name), def, p.Field(name), obj); err != nil {
			return err
		}
	}

	additional, hasAdditional := s[kwAdditionalProperties]
	closed := hasAdditional && additional == false
	for _, key := range sortedKeys(m) {
		val := m[key]
		fp := p.Field(key)
		def, _ := AsSchema(props[key])
		if !strings.HasPrefix(key, reservedPrefix) && def == nil && closed {
			return fail(fp, CodeUnexpectedProperty, map[string]any{"property": key})
		}
		if def != nil {
			if err := v.checkRequires(m, def, fp, p); err != nil {
				return err
			}
		}
		if !props.Has(key) {
			rest, err := additionalSchema(additional, p)
			if err != nil {
				return err
			}
			if err := v.checkProperty(present(val), rest, fp, obj); err != nil {
				return err
			}
		}
		if v.mode == ModeStrict {
			if embedded, ok := embeddedSchema(val); ok {
				v.log.Debug("validating embedded $schema", slog.String("path", fp.Pointer()))
				if err := v.checkProperty(present(val), embedded, fp, obj); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkRequires enforces "requires": a property name that must also be
// present, or a schema the enclosing object must satisfy.
func (v *Validator) checkRequires(m map[string]any, def Schema, p, objPath PathRef) error {
	req, ok := def.rule(kwRequires)
	if !ok {
		return nil
	}
	switch t := req.(type) {
	case string:
		if _, found := m[t]; !found {
			return fail(p, CodeMissingDependency, map[string]any{"requires": t})
		}
		return nil
	default:
		dep, isSchema := AsSchema(t)
		if !isSchema {
			return invalidSchema(p, "requires must be a property name or a schema")
		}
		return v.checkProperty(present(m), dep, objPath, nil)
	}
}

// propertySchema interprets one entry of "properties". Null and false
// declare nothing.
func propertySchema(raw any, p PathRef) (Schema, error) {
	switch raw.(type) {
	case nil, bool:
		return nil, nil
	}
	s, ok := AsSchema(raw)
	if !ok {
		return nil, invalidSchema(p, "property definitions must be objects")
	}
	return s, nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

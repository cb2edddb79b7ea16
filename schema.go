package draft3

// Schema is one draft-3 schema node: a mapping of rule names to rule values,
// typically decoded from JSON. Values are dynamically typed; the accessors
// below interpret them per rule and treat unknown keys as absent.
type Schema map[string]any

// Schema keywords understood by the validator.
const (
	kwID                   = "id"
	kwRef                  = "$ref"
	kwSchema               = "$schema"
	kwType                 = "type"
	kwDisallow             = "disallow"
	kwExtends              = "extends"
	kwProperties           = "properties"
	kwItems                = "items"
	kwAdditionalProperties = "additionalProperties"
	kwRequired             = "required"
	kwRequires             = "requires"
	kwDefault              = "default"
	kwReadonly             = "readonly"
	kwMinimum              = "minimum"
	kwMaximum              = "maximum"
	kwMinimumCanEqual      = "minimumCanEqual"
	kwMaximumCanEqual      = "maximumCanEqual"
	kwMaxDecimal           = "maxDecimal"
	kwMinLength            = "minLength"
	kwMaxLength            = "maxLength"
	kwMinItems             = "minItems"
	kwMaxItems             = "maxItems"
	kwPattern              = "pattern"
	kwEnum                 = "enum"
	kwDescription          = "description"
	kwTitle                = "title"
)

// AsSchema interprets v as a schema node.
func AsSchema(v any) (Schema, bool) {
	switch t := v.(type) {
	case Schema:
		return t, t != nil
	case map[string]any:
		return Schema(t), t != nil
	}
	return nil, false
}

// Has reports whether the key is present, regardless of its value.
func (s Schema) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// rule returns the value of key when it is set to something other than null
// or false. Most draft-3 rules are ignored when set to either.
func (s Schema) rule(key string) (any, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return nil, false
	}
	if b, isBool := v.(bool); isBool && !b {
		return nil, false
	}
	return v, true
}

// isTrue reports whether key holds exactly boolean true.
func (s Schema) isTrue(key string) bool {
	b, ok := s[key].(bool)
	return ok && b
}

// isFalse reports whether key holds exactly boolean false.
func (s Schema) isFalse(key string) bool {
	b, ok := s[key].(bool)
	return ok && !b
}

// str returns key as a string when it is one.
func (s Schema) str(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// ID returns the schema's id, if any.
func (s Schema) ID() string {
	id, _ := s.str(kwID)
	return id
}

// bound reads an integer bound such as minItems.
func (s Schema) bound(key string) (int, bool) {
	v, ok := s.rule(key)
	if !ok {
		return 0, false
	}
	return asInt(v)
}

// numberRule reads a numeric bound such as minimum, keeping the original
// representation for exact comparison.
func (s Schema) numberRule(key string) (any, bool) {
	v, ok := s.rule(key)
	if !ok || !KindOf(v).Numeric() {
		return nil, false
	}
	return v, true
}

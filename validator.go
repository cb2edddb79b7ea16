package draft3

import (
	"log/slog"
	"regexp"
)

// Validator checks instance trees against draft-3 schemas.
//
// A Validator keeps a reference map of schema ids seen so far and is not
// safe for concurrent use; run concurrent validations on separate
// Validators. In ModeInteractive, Validate writes missing defaults into the
// caller's containers in place.
type Validator struct {
	mode     Mode
	maxDepth int
	log      *slog.Logger

	refs     map[string]Schema
	patterns map[string]*regexp.Regexp

	// per-call state
	depth    int
	presence PresenceMap
}

// New returns a Validator configured by the last Options given.
func New(opts ...Options) *Validator {
	opt := lastOptions(opts)
	return &Validator{
		mode:     opt.Mode,
		maxDepth: opt.MaxDepth,
		log:      opt.Logger,
		refs:     make(map[string]Schema),
		patterns: make(map[string]*regexp.Regexp),
	}
}

// Mode reports the validator's mode.
func (v *Validator) Mode() Mode { return v.mode }

// Lookup returns the schema registered under id. Ids are registered as the
// schemas declaring them are visited, so a schema is only reachable after it
// has been traversed once.
func (v *Validator) Lookup(id string) (Schema, bool) {
	s, ok := v.refs[id]
	return s, ok
}

// Validate checks instance against schema and returns the instance, which in
// ModeInteractive may have had defaults injected. When schema is nil and the
// instance is a mapping carrying a "$schema" mapping, that embedded schema is
// used; otherwise the instance is returned unchanged.
//
// Defaulting mutates the instance's containers in place; it is not
// referentially transparent.
func (v *Validator) Validate(instance any, schema Schema) (any, error) {
	out, err := v.run(instance, schema)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateWithMeta is Validate plus presence metadata describing which
// pointers were seen, null, or defaulted.
func (v *Validator) ValidateWithMeta(instance any, schema Schema) (Decoded, error) {
	v.presence = PresenceMap{}
	defer func() { v.presence = nil }()
	out, err := v.run(instance, schema)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Value: out, Presence: v.presence}, nil
}

func (v *Validator) run(instance any, schema Schema) (any, error) {
	if schema == nil {
		embedded, ok := embeddedSchema(instance)
		if !ok {
			return instance, nil
		}
		schema = embedded
	}
	v.depth = 0
	tree := mapContainer{rootKey: instance}
	if err := v.checkProperty(present(instance), schema, RootPath(), tree); err != nil {
		return nil, err
	}
	return tree[rootKey], nil
}

// embeddedSchema returns the "$schema" mapping of a self-describing value.
func embeddedSchema(v any) (Schema, bool) {
	m := asMap(v)
	if m == nil {
		return nil, false
	}
	return AsSchema(m[kwSchema])
}

func (v *Validator) register(s Schema, p PathRef) {
	id := s.ID()
	if id == "" {
		return
	}
	if _, ok := v.refs[id]; ok {
		return
	}
	v.refs[id] = s
	v.log.Debug("registered schema id", slog.String("id", id), slog.String("path", p.Pointer()))
}

func (v *Validator) pattern(expr string) (*regexp.Regexp, error) {
	if re, ok := v.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	v.patterns[expr] = re
	return re, nil
}

// Validate constructs a fresh Validator and validates instance with it.
func Validate(instance any, schema Schema, opts ...Options) (any, error) {
	return New(opts...).Validate(instance, schema)
}

// ValidateWithMeta constructs a fresh Validator and returns the validated
// instance along with presence metadata.
func ValidateWithMeta(instance any, schema Schema, opts ...Options) (Decoded, error) {
	return New(opts...).ValidateWithMeta(instance, schema)
}

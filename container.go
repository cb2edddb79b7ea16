package draft3

import "strconv"

// slot is a value looked up in its parent container. present is false when
// the key is absent, which is distinct from a present null.
type slot struct {
	value   any
	present bool
}

func present(v any) slot { return slot{value: v, present: true} }

var absent = slot{}

// container is the parent a checked value lives in. Default injection writes
// through it, so mutations are visible to the caller.
type container interface {
	contains(key string) bool
	get(key string) (any, bool)
	put(key string, v any)
}

type mapContainer map[string]any

func (m mapContainer) contains(key string) bool {
	_, ok := m[key]
	return ok
}

func (m mapContainer) get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapContainer) put(key string, v any) { m[key] = v }

func (m mapContainer) slot(key string) slot {
	if v, ok := m[key]; ok {
		return present(v)
	}
	return absent
}

// sliceContainer wraps a sequence. Writes past the end extend it with nulls;
// the owner writes the grown slice back into its own parent.
type sliceContainer struct {
	items []any
	grown bool
}

func (s *sliceContainer) contains(key string) bool {
	i, err := strconv.Atoi(key)
	return err == nil && i >= 0 && i < len(s.items)
}

func (s *sliceContainer) get(key string) (any, bool) {
	if !s.contains(key) {
		return nil, false
	}
	i, _ := strconv.Atoi(key)
	return s.items[i], true
}

func (s *sliceContainer) put(key string, v any) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 {
		return
	}
	for len(s.items) <= i {
		s.items = append(s.items, nil)
		s.grown = true
	}
	s.items[i] = v
}

func (s *sliceContainer) slot(i int) slot {
	if i < len(s.items) {
		return present(s.items[i])
	}
	return absent
}

// reread returns the current value of a present slot from its parent. A
// nested check may have replaced it there, e.g. with a sequence grown by
// defaults.
func reread(val slot, key string, parent container) slot {
	if !val.present || parent == nil {
		return val
	}
	if v, ok := parent.get(key); ok {
		return present(v)
	}
	return val
}

// cloneValue deep-copies mappings and sequences so injected defaults never
// alias the schema.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case Schema:
		return cloneValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

package draft3

import "sort"

// Presence is the bit flag collected by ValidateWithMeta.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Value was present in the instance.
	PresenceWasNull                             // Value was null.
	PresenceDefaultApplied                      // Default value was injected.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Has reports whether the path carries all bits of flag.
func (pm PresenceMap) Has(path string, flag Presence) bool {
	return pm[path]&flag == flag
}

// Paths returns the sorted pointers carrying flag.
func (pm PresenceMap) Paths(flag Presence) []string {
	var out []string
	for p, f := range pm {
		if f&flag == flag {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Decoded carries the validated value along with presence metadata.
type Decoded struct {
	Value    any
	Presence PresenceMap
}

func (pm PresenceMap) mark(p PathRef, flag Presence) {
	if pm == nil {
		return
	}
	pm[p.Pointer()] |= flag
}

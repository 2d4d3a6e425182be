package entity

import (
	"sort"
	"strings"
)

// MultiPropertyName returns the canonical composite descriptor name
// RegisterMultiProperty would produce for names, without registering
// anything. The query engine uses this to test whether a set of
// predicate property names matches a registered multi-property so it can
// anchor on that property's index instead of scanning per-constituent.
func MultiPropertyName(names ...string) string {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	return "multi:" + strings.Join(sorted, "+")
}

// RegisterMultiProperty declares a derived property whose value is the
// tuple of names' current values, canonicalized by sorting names into a
// fixed order first. Two calls naming the same set of properties in any
// order produce the same composite property name and therefore share one
// descriptor and one index bucket — registering it twice is a no-op, not
// an error.
func RegisterMultiProperty(s *Store, entityType string, names ...string) string {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	compositeName := MultiPropertyName(names...)

	s.ensureType(entityType)
	if _, ok := s.descriptors[entityType][compositeName]; ok {
		return compositeName
	}
	deps := append([]string{}, sorted...)
	RegisterProperty(s, entityType, compositeName, Derived, nil, deps, func(vals []any) any {
		tuple := make([]any, len(vals))
		copy(tuple, vals)
		return tuple
	})
	d := s.descriptors[entityType][compositeName]
	d.HashCanonical = func(cv any) uint64 {
		tuple := cv.([]any)
		parts := make([]uint64, len(tuple))
		for i, v := range tuple {
			parts[i] = defaultHash(v)
		}
		return hashTuple(parts)
	}
	return compositeName
}

package entity

import "iter"

// EntityIterator returns a lazy sequence over every entity of entityType
// currently in the store, in index order. Unlike a materialized []ID
// slice, the sequence is generated on demand, so a caller that breaks
// out early (for example, after finding the first match) never pays for
// entities past the one it stopped on.
func EntityIterator(store *Store, entityType string) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		n := store.EntityCount(entityType)
		for i := uint64(0); i < n; i++ {
			if !yield(ID{Type: entityType, Index: i}) {
				return
			}
		}
	}
}

package query

import (
	"iter"

	"github.com/smilemakc/simcore/entity"
)

// QueryResultIterator returns a lazy sequence over the same matches
// Result would return, in the same order, without materializing the
// full result slice up front: the slow-path filter is applied candidate
// by candidate as the sequence is walked, so a consumer that stops early
// skips the remaining matches entirely.
func QueryResultIterator(store *entity.Store, entityType string, preds []Predicate) iter.Seq[entity.ID] {
	return func(yield func(entity.ID) bool) {
		candidates, remaining := anchor(store, entityType, preds)
		for _, id := range candidates {
			if !matches(store, id, remaining) {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}

// WithQueryResults calls visit once for every entity of entityType
// matching every predicate in preds, in the same order QueryResultIterator
// would produce. It stops early the moment visit returns false.
func WithQueryResults(store *entity.Store, entityType string, preds []Predicate, visit func(entity.ID) bool) {
	for id := range QueryResultIterator(store, entityType, preds) {
		if !visit(id) {
			return
		}
	}
}

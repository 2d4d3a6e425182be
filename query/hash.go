package query

import (
	"fmt"

	"github.com/smilemakc/simcore/entity"
)

// indexHash canonicalizes and hashes value using the same descriptor
// capability functions the index itself was built with, so a predicate
// value hashes identically to the column values the index bucketed.
func indexHash(store *entity.Store, entityType, property string, value any) uint64 {
	d := store.Descriptor(entityType, property)
	cv := value
	if d.Canonicalize != nil {
		cv = d.Canonicalize(value)
	}
	if d.HashCanonical != nil {
		return d.HashCanonical(cv)
	}
	return 0
}

func toKeyString(v any) string {
	return fmt.Sprintf("%T:%v", v, v)
}

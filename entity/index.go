package entity

// Index maps a property's canonical-value hash to the set of entity
// indices currently holding that value. Mutations mark the entity dirty
// rather than updating buckets in place; Reconcile folds the dirty set
// into the buckets before any query reads them, the same lazy-index
// pattern the property store uses for derived recomputation.
type Index struct {
	buckets map[uint64]map[uint64]struct{} // hash(canonical value) -> entity indices
	dirty   map[uint64]struct{}            // entity indices awaiting reconciliation
	current func(entityIdx uint64) (uint64, bool)
}

func newIndex(current func(entityIdx uint64) (uint64, bool)) *Index {
	return &Index{
		buckets: make(map[uint64]map[uint64]struct{}),
		dirty:   make(map[uint64]struct{}),
		current: current,
	}
}

// MarkDirty records that entityIdx's indexed value may have changed and
// must be reconciled before the next read.
func (ix *Index) MarkDirty(entityIdx uint64) {
	ix.dirty[entityIdx] = struct{}{}
}

// Reconcile folds every dirty entity into its correct bucket, removing
// it from any stale bucket first. After Reconcile, the union of all
// buckets equals exactly the set of entities with a value for this
// property.
func (ix *Index) Reconcile() {
	for entityIdx := range ix.dirty {
		for h, bucket := range ix.buckets {
			if _, ok := bucket[entityIdx]; ok {
				delete(bucket, entityIdx)
				if len(bucket) == 0 {
					delete(ix.buckets, h)
				}
			}
		}
		if h, ok := ix.current(entityIdx); ok {
			bucket, ok := ix.buckets[h]
			if !ok {
				bucket = make(map[uint64]struct{})
				ix.buckets[h] = bucket
			}
			bucket[entityIdx] = struct{}{}
		}
	}
	ix.dirty = make(map[uint64]struct{})
}

// Bucket returns the (already-reconciled) set of entity indices whose
// canonical value hashes to h.
func (ix *Index) Bucket(h uint64) map[uint64]struct{} {
	ix.Reconcile()
	return ix.buckets[h]
}

// Len returns the total number of indexed entities across all buckets,
// after reconciling.
func (ix *Index) Len() int {
	ix.Reconcile()
	n := 0
	for _, b := range ix.buckets {
		n += len(b)
	}
	return n
}

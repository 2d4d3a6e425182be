// Package query implements the engine's query engine (C7): fast/slow
// path predicate evaluation over the property store and index, plus
// Algorithm L reservoir sampling for uniform draws over a query result.
package query

import (
	"math"
	"sort"

	"github.com/smilemakc/simcore/entity"
	"github.com/smilemakc/simcore/rng"
	"github.com/smilemakc/simcore/simerr"
)

// Predicate constrains one property to an exact value.
type Predicate struct {
	Property string
	Value    any
}

// matches reports whether every predicate holds for id under store.
func matches(store *entity.Store, id entity.ID, preds []Predicate) bool {
	for _, p := range preds {
		if store.GetProperty(id, p.Property) != p.Value {
			return false
		}
	}
	return true
}

// Result iterates an entityType's population looking for the smallest
// available indexed sub-predicate bucket to anchor the scan on (the
// "fast path"); any remaining predicates are applied by direct lookup
// (the "slow path" filter). If nothing is indexed, it scans the whole
// population.
func Result(store *entity.Store, entityType string, preds []Predicate) []entity.ID {
	candidates, remaining := anchor(store, entityType, preds)

	out := make([]entity.ID, 0, len(candidates))
	for _, id := range candidates {
		if matches(store, id, remaining) {
			out = append(out, id)
		}
	}
	return out
}

// anchor picks the cheapest starting candidate set. It first checks
// whether preds' own property names, as a set, name a registered and
// indexed multi-property (see entity.RegisterMultiProperty): if so, the
// whole predicate set is satisfied by one bucket lookup on the composite
// index, and nothing remains for the slow path. Otherwise it falls back
// to the smallest bucket among the indexed individual predicates, or the
// full population if none of preds names an indexed property, returning
// whatever predicates are left to check by direct lookup.
func anchor(store *entity.Store, entityType string, preds []Predicate) ([]entity.ID, []Predicate) {
	if ids, ok := anchorMultiProperty(store, entityType, preds); ok {
		return ids, nil
	}

	best := -1
	var bestBucket map[uint64]struct{}
	for i, p := range preds {
		if !store.IsIndexed(entityType, p.Property) {
			continue
		}
		ix := store.Index(entityType, p.Property)
		h := indexHash(store, entityType, p.Property, p.Value)
		bucket := ix.Bucket(h)
		if best < 0 || len(bucket) < len(bestBucket) {
			best, bestBucket = i, bucket
		}
	}
	if best >= 0 {
		ids := make([]entity.ID, 0, len(bestBucket))
		for idx := range bestBucket {
			ids = append(ids, entity.ID{Type: entityType, Index: idx})
		}
		sortIDs(ids)
		remaining := make([]Predicate, 0, len(preds)-1)
		remaining = append(remaining, preds[:best]...)
		remaining = append(remaining, preds[best+1:]...)
		return ids, remaining
	}

	n := store.EntityCount(entityType)
	ids := make([]entity.ID, 0, n)
	for i := uint64(0); i < n; i++ {
		ids = append(ids, entity.ID{Type: entityType, Index: i})
	}
	return ids, preds
}

// anchorMultiProperty reports whether preds' property names, taken as a
// set, name a registered and indexed multi-property, and if so returns
// the exact matching candidates from that property's index bucket (every
// predicate is already satisfied by the bucket membership, so the caller
// has nothing left to filter). A single predicate is never treated as a
// multi-property match — that's the plain per-predicate fast path below.
func anchorMultiProperty(store *entity.Store, entityType string, preds []Predicate) ([]entity.ID, bool) {
	if len(preds) < 2 {
		return nil, false
	}
	names := make([]string, len(preds))
	for i, p := range preds {
		names[i] = p.Property
	}
	composite := entity.MultiPropertyName(names...)
	if !store.IsIndexed(entityType, composite) {
		return nil, false
	}

	d := store.Descriptor(entityType, composite)
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	tuple := make([]any, len(sorted))
	for i, name := range sorted {
		for _, p := range preds {
			if p.Property == name {
				tuple[i] = p.Value
				break
			}
		}
	}

	h := d.HashCanonical(d.Canonicalize(tuple))
	ix := store.Index(entityType, composite)
	bucket := ix.Bucket(h)
	ids := make([]entity.ID, 0, len(bucket))
	for idx := range bucket {
		ids = append(ids, entity.ID{Type: entityType, Index: idx})
	}
	sortIDs(ids)
	return ids, true
}

func sortIDs(ids []entity.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Index < ids[j].Index })
}

// Count returns len(Result(...)) without the caller needing to discard
// the slice; for an unindexed predicate set this is still a full scan,
// except for the empty-predicate case, which is the population count
// the store already tracks in O(1).
func Count(store *entity.Store, entityType string, preds []Predicate) int {
	if len(preds) == 0 {
		return int(store.EntityCount(entityType))
	}
	return len(Result(store, entityType, preds))
}

// SampleEntity draws one uniformly-random match for preds using the
// named RNG stream. Returns simerr.EmptySampleError if nothing matches.
func SampleEntity(reg *rng.Registry, stream rng.StreamID, store *entity.Store, entityType string, preds []Predicate) (entity.ID, error) {
	if len(preds) == 0 {
		n := int(store.EntityCount(entityType))
		if n == 0 {
			return entity.ID{}, &simerr.EmptySampleError{Query: entityType}
		}
		return entity.ID{Type: entityType, Index: uint64(rng.SampleRange(reg, stream, 0, n))}, nil
	}
	matched := Result(store, entityType, preds)
	if len(matched) == 0 {
		return entity.ID{}, &simerr.EmptySampleError{Query: entityType}
	}
	i := rng.SampleRange(reg, stream, 0, len(matched))
	return matched[i], nil
}

// SampleEntities draws n entities uniformly without replacement from the
// matches for preds, via Algorithm L reservoir sampling. Returns fewer
// than n (never an error) if fewer than n entities match; returns
// (nil, nil) — not an error — if n is 0 or nothing matches.
func SampleEntities(reg *rng.Registry, stream rng.StreamID, store *entity.Store, entityType string, preds []Predicate, n int) ([]entity.ID, error) {
	if n <= 0 {
		return nil, nil
	}
	matched := Result(store, entityType, preds)
	if len(matched) == 0 {
		return nil, nil
	}
	if len(matched) <= n {
		return matched, nil
	}
	return algorithmL(reg, stream, matched, n), nil
}

// algorithmL implements Kim-Hwang Algorithm L: build a reservoir of the
// first n items, then skip ahead geometrically instead of flipping a
// coin per remaining item, giving O(n * (1 + log(N/n))) draws instead of
// O(N).
func algorithmL(reg *rng.Registry, stream rng.StreamID, population []entity.ID, n int) []entity.ID {
	reservoir := make([]entity.ID, n)
	copy(reservoir, population[:n])

	w := math.Exp(math.Log(rng.SampleFloat64(reg, stream)) / float64(n))
	i := n - 1
	for i < len(population)-1 {
		i += int(math.Floor(math.Log(rng.SampleFloat64(reg, stream))/math.Log(1-w))) + 1
		if i < len(population) {
			j := rng.SampleRange(reg, stream, 0, n)
			reservoir[j] = population[i]
		}
		w *= math.Exp(math.Log(rng.SampleFloat64(reg, stream)) / float64(n))
	}
	return reservoir
}

// Row is one tabulated combination of property values and the number of
// entities currently holding exactly that combination.
type Row struct {
	Values []any
	Count  int
}

// Tabulate reconciles every named property's index (if indexed) and
// groups the entityType population by the tuple of their values,
// returning one Row per distinct combination actually observed.
func Tabulate(store *entity.Store, entityType string, properties []string) []Row {
	for _, p := range properties {
		if ix := store.Index(entityType, p); ix != nil {
			ix.Reconcile()
		}
	}

	groups := make(map[string]*Row)
	order := make([]string, 0)

	n := store.EntityCount(entityType)
	for i := uint64(0); i < n; i++ {
		id := entity.ID{Type: entityType, Index: i}
		values := make([]any, len(properties))
		key := ""
		for j, p := range properties {
			values[j] = store.GetProperty(id, p)
			key += indexKeyPart(values[j])
		}
		row, ok := groups[key]
		if !ok {
			row = &Row{Values: values, Count: 0}
			groups[key] = row
			order = append(order, key)
		}
		row.Count++
	}

	out := make([]Row, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}

func indexKeyPart(v any) string {
	return toKeyString(v) + "|"
}

// Package entity implements the property store (C5), property index
// (C6), and derived-property dependency graph (C8): per-entity-type
// sparse property columns, optional hash-bucket indices over canonical
// values, and lazy recomputation with change propagation for derived
// properties.
package entity

import (
	"fmt"
	"reflect"

	"github.com/smilemakc/simcore/event"
	"github.com/smilemakc/simcore/simerr"
)

// ID addresses one entity: its type tag plus a dense index into that
// type's columns.
type ID struct {
	Type  string
	Index uint64
}

func (id ID) String() string { return fmt.Sprintf("%s#%d", id.Type, id.Index) }

// PropertyValue is one (name, value) pair supplied to AddEntity. Using a
// slice instead of a map lets AddEntity detect duplicate entries, which
// a map would silently collapse.
type PropertyValue struct {
	Name  string
	Value any
}

// PropertyChangeEvent is published (via the owning Context's event bus)
// whenever SetProperty changes a property's effective value, and for
// every derived property transitively affected by that change.
type PropertyChangeEvent struct {
	EntityType string
	Property   string
	Entity     ID
	OldValue   any
	NewValue   any
}

// Store owns every entity type's property columns, descriptors, indices
// and the derived-property dependency graph. It assumes single-threaded
// cooperative access, the same assumption the owning Context's main loop
// makes of the whole engine.
type Store struct {
	counts      map[string]uint64
	descriptors map[string]map[string]*Descriptor
	columns     map[string]map[string]map[uint64]any
	indices     map[string]map[string]*Index
	dependents  map[string]map[string][]string // entityType -> property -> direct dependents
	bus         *event.Bus
}

// New returns an empty property store that publishes change events on bus.
func New(bus *event.Bus) *Store {
	return &Store{
		counts:      make(map[string]uint64),
		descriptors: make(map[string]map[string]*Descriptor),
		columns:     make(map[string]map[string]map[uint64]any),
		indices:     make(map[string]map[string]*Index),
		dependents:  make(map[string]map[string][]string),
		bus:         bus,
	}
}

func (s *Store) ensureType(entityType string) {
	if _, ok := s.descriptors[entityType]; ok {
		return
	}
	s.descriptors[entityType] = make(map[string]*Descriptor)
	s.columns[entityType] = make(map[string]map[uint64]any)
	s.indices[entityType] = make(map[string]*Index)
	s.dependents[entityType] = make(map[string][]string)
}

// RegisterProperty declares a property of entityType. kind is Explicit,
// Constant, or Derived. For Constant, def is the value returned before
// any SetProperty call. For Derived, deps names the properties (of the
// same entity type) passed to compute, in order, and def is ignored.
func RegisterProperty(s *Store, entityType, name string, kind InitKind, def any, deps []string, compute func(deps []any) any) *Descriptor {
	s.ensureType(entityType)
	d := newDescriptor(entityType, name, kind)
	d.Default = def
	d.Deps = deps
	d.Compute = compute
	s.descriptors[entityType][name] = d
	s.columns[entityType][name] = make(map[uint64]any)

	if kind == Derived {
		for _, dep := range deps {
			s.dependents[entityType][dep] = append(s.dependents[entityType][dep], name)
		}
	}
	return d
}

// IndexProperty marks name as indexed: subsequent queries over it use
// the hash-bucket fast path instead of a full population scan. Works for
// any InitKind — Explicit, Constant, or Derived (including multi
// properties) — by reading through GetProperty rather than the raw
// column, since a Derived property's value is never written to its
// column at all.
func IndexProperty(s *Store, entityType, name string) {
	d, ok := s.descriptors[entityType][name]
	if !ok {
		return
	}
	d.indexed = true
	s.indices[entityType][name] = newIndex(func(entityIdx uint64) (uint64, bool) {
		v := s.GetProperty(ID{Type: entityType, Index: entityIdx}, name)
		return d.HashCanonical(d.Canonicalize(v)), true
	})
	// Seed the dirty set with every entity that currently exists so the
	// first Reconcile builds complete buckets.
	for i := uint64(0); i < s.counts[entityType]; i++ {
		s.indices[entityType][name].MarkDirty(i)
	}
}

// Descriptor returns the registered descriptor for (entityType, name),
// or nil if it was never registered.
func (s *Store) Descriptor(entityType, name string) *Descriptor {
	return s.descriptors[entityType][name]
}

// IsIndexed reports whether name is currently indexed for entityType.
func (s *Store) IsIndexed(entityType, name string) bool {
	d, ok := s.descriptors[entityType][name]
	return ok && d.indexed
}

// Index returns the live index for an indexed property, or nil.
func (s *Store) Index(entityType, name string) *Index {
	return s.indices[entityType][name]
}

// EntityCount returns the number of entities of entityType created so far.
func (s *Store) EntityCount(entityType string) uint64 {
	return s.counts[entityType]
}

// AddEntity creates a new entityType entity with the given initial
// property values. Returns MissingPropertyError if an Explicit property
// of entityType is absent from values, DuplicatePropertyError if a name
// repeats, or an error wrapping simerr.ErrSetOnDerived if a Derived
// property appears in values.
func (s *Store) AddEntity(entityType string, values ...PropertyValue) (ID, error) {
	s.ensureType(entityType)
	seen := make(map[string]bool, len(values))
	for _, pv := range values {
		if seen[pv.Name] {
			return ID{}, &simerr.DuplicatePropertyError{EntityType: entityType, Property: pv.Name}
		}
		seen[pv.Name] = true
	}
	descs := s.descriptors[entityType]
	for name, d := range descs {
		if d.Kind == Explicit && !seen[name] {
			return ID{}, &simerr.MissingPropertyError{EntityType: entityType, Property: name}
		}
	}
	for _, pv := range values {
		d, ok := descs[pv.Name]
		if ok && d.Kind == Derived {
			return ID{}, fmt.Errorf("property %q: %w", pv.Name, simerr.ErrSetOnDerived)
		}
	}

	idx := s.counts[entityType]
	s.counts[entityType] = idx + 1
	id := ID{Type: entityType, Index: idx}

	for _, pv := range values {
		if _, ok := descs[pv.Name]; !ok {
			continue
		}
		s.columns[entityType][pv.Name][idx] = pv.Value
	}
	// Mark every indexed property dirty for this entity, not just the
	// ones explicitly supplied: Constant properties may fall back to
	// their default, and Derived properties (including multi
	// properties) are never in values at all, but both still need a
	// bucket assigned on the next Reconcile.
	for _, ix := range s.indices[entityType] {
		ix.MarkDirty(idx)
	}
	return id, nil
}

// GetProperty returns id's current value for name. Explicit properties
// panic (simerr.PropertyNotSetPanic) if never set. Constant properties
// fall back to their registered default. Derived properties recompute
// from their dependencies on every call.
func (s *Store) GetProperty(id ID, name string) any {
	d, ok := s.descriptors[id.Type][name]
	if !ok {
		panic(fmt.Sprintf("entity: property %q not registered for type %q", name, id.Type))
	}
	switch d.Kind {
	case Explicit:
		v, ok := s.columns[id.Type][name][id.Index]
		if !ok {
			panic(&simerr.PropertyNotSetPanic{EntityType: id.Type, Property: name, EntityID: id.Index})
		}
		return v
	case Constant:
		v, ok := s.columns[id.Type][name][id.Index]
		if !ok {
			return d.Default
		}
		return v
	case Derived:
		return s.computeDerived(id, d)
	default:
		panic("entity: unreachable InitKind")
	}
}

func (s *Store) computeDerived(id ID, d *Descriptor) any {
	depVals := make([]any, len(d.Deps))
	for i, dep := range d.Deps {
		depVals[i] = s.GetProperty(id, dep)
	}
	return d.Compute(depVals)
}

// SetProperty updates id's value for name. Panics (simerr.SetOnDerivedPanic)
// if name is Derived. A set that does not change the effective value is a
// no-op: no column write, no index dirtying, no events. Otherwise it
// returns the thunks (one per subscribed handler) for every
// PropertyChangeEvent the change produces — for name itself, and for
// every Derived property transitively depending on it whose value
// actually changed — which the caller (Context) enqueues as immediate
// callbacks so dispatch happens after the mutation fully commits.
func (s *Store) SetProperty(id ID, name string, value any) []func() {
	d, ok := s.descriptors[id.Type][name]
	if !ok {
		panic(fmt.Sprintf("entity: property %q not registered for type %q", name, id.Type))
	}
	if d.Kind == Derived {
		panic(&simerr.SetOnDerivedPanic{Property: name})
	}

	col := s.columns[id.Type][name]
	rawOld, hadRawOld := col[id.Index]
	var effectiveOld any
	switch {
	case hadRawOld:
		effectiveOld = rawOld
	case d.Kind == Constant:
		effectiveOld = d.Default
	default:
		effectiveOld = nil
	}

	if (hadRawOld || d.Kind == Constant) && reflect.DeepEqual(effectiveOld, value) {
		return nil
	}

	dependents := s.transitiveDependents(id.Type, name)
	oldDerived := make(map[string]any, len(dependents))
	for _, dn := range dependents {
		oldDerived[dn] = s.GetProperty(id, dn)
	}

	col[id.Index] = value
	if ix, ok := s.indices[id.Type][name]; ok {
		ix.MarkDirty(id.Index)
	}

	var thunks []func()
	thunks = append(thunks, event.EmitEvent(s.bus, PropertyChangeEvent{
		EntityType: id.Type, Property: name, Entity: id, OldValue: effectiveOld, NewValue: value,
	})...)

	for _, dn := range dependents {
		newVal := s.GetProperty(id, dn)
		if reflect.DeepEqual(oldDerived[dn], newVal) {
			continue
		}
		if ix, ok := s.indices[id.Type][dn]; ok {
			ix.MarkDirty(id.Index)
		}
		thunks = append(thunks, event.EmitEvent(s.bus, PropertyChangeEvent{
			EntityType: id.Type, Property: dn, Entity: id, OldValue: oldDerived[dn], NewValue: newVal,
		})...)
	}
	return thunks
}

// transitiveDependents returns every Derived property (of entityType)
// that depends, directly or through a chain, on name — in breadth-first
// order out from name, deduplicated.
func (s *Store) transitiveDependents(entityType, name string) []string {
	var order []string
	seen := map[string]bool{}
	queue := append([]string{}, s.dependents[entityType][name]...)
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		if seen[d] {
			continue
		}
		seen[d] = true
		order = append(order, d)
		queue = append(queue, s.dependents[entityType][d]...)
	}
	return order
}

package entity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/simcore/entity"
	"github.com/smilemakc/simcore/event"
)

const personType = "person"

func TestAddEntityMissingRequiredProperty(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	entity.RegisterProperty(s, personType, "age", entity.Explicit, nil, nil, nil)

	_, err := s.AddEntity(personType)
	require.Error(t, err)
}

func TestAddEntityDuplicateProperty(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	entity.RegisterProperty(s, personType, "age", entity.Explicit, nil, nil, nil)

	_, err := s.AddEntity(personType,
		entity.PropertyValue{Name: "age", Value: 10},
		entity.PropertyValue{Name: "age", Value: 20},
	)
	require.Error(t, err)
}

func TestExplicitPropertyPanicsWhenUnset(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	entity.RegisterProperty(s, personType, "age", entity.Explicit, nil, nil, nil)

	id, err := s.AddEntity(personType, entity.PropertyValue{Name: "age", Value: 30})
	require.NoError(t, err)

	// AddEntity rejects a missing Explicit property, so register a second
	// Explicit property only after the entity exists to reach the panic path.
	entity.RegisterProperty(s, personType, "nickname", entity.Explicit, nil, nil, nil)

	require.Panics(t, func() {
		s.GetProperty(id, "nickname")
	})
}

func TestConstantPropertyDefaultsUntilSet(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	entity.RegisterProperty(s, personType, "infected", entity.Constant, false, nil, nil)
	event.SubscribeToEvent(bus, func(entity.PropertyChangeEvent) {})

	id, err := s.AddEntity(personType)
	require.NoError(t, err)
	require.Equal(t, false, s.GetProperty(id, "infected"))

	thunks := s.SetProperty(id, "infected", true)
	require.Len(t, thunks, 1)
	require.Equal(t, true, s.GetProperty(id, "infected"))
}

func TestSetPropertyEqualValueIsNoOp(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	entity.RegisterProperty(s, personType, "infected", entity.Constant, false, nil, nil)
	event.SubscribeToEvent(bus, func(entity.PropertyChangeEvent) {})
	id, err := s.AddEntity(personType)
	require.NoError(t, err)

	thunks := s.SetProperty(id, "infected", false) // same as default
	require.Empty(t, thunks)
}

func TestDerivedPropertyRecomputesAndPropagatesChangeEvents(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	entity.RegisterProperty(s, personType, "infected", entity.Constant, false, nil, nil)
	entity.RegisterProperty(s, personType, "status", entity.Derived, nil,
		[]string{"infected"},
		func(deps []any) any {
			if deps[0].(bool) {
				return "I"
			}
			return "S"
		},
	)

	var fired []entity.PropertyChangeEvent
	event.SubscribeToEvent(bus, func(e entity.PropertyChangeEvent) { fired = append(fired, e) })

	id, err := s.AddEntity(personType)
	require.NoError(t, err)
	require.Equal(t, "S", s.GetProperty(id, "status"))

	thunks := s.SetProperty(id, "infected", true)
	require.Len(t, thunks, 2) // infected change + derived status change
	for _, th := range thunks {
		th()
	}
	require.Equal(t, "I", s.GetProperty(id, "status"))

	require.Len(t, fired, 2)
	require.Equal(t, "infected", fired[0].Property)
	require.Equal(t, "status", fired[1].Property)
	require.Equal(t, "S", fired[1].OldValue)
	require.Equal(t, "I", fired[1].NewValue)
}

func TestMultiPropertySharesBucketAcrossArgumentOrder(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	entity.RegisterProperty(s, personType, "age", entity.Explicit, nil, nil, nil)
	entity.RegisterProperty(s, personType, "infected", entity.Constant, false, nil, nil)

	nameA := entity.RegisterMultiProperty(s, personType, "age", "infected")
	nameB := entity.RegisterMultiProperty(s, personType, "infected", "age")
	require.Equal(t, nameA, nameB)
}

func TestSetOnDerivedPanics(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	entity.RegisterProperty(s, personType, "infected", entity.Constant, false, nil, nil)
	entity.RegisterProperty(s, personType, "status", entity.Derived, nil,
		[]string{"infected"}, func(deps []any) any { return deps[0] })

	id, err := s.AddEntity(personType)
	require.NoError(t, err)

	require.Panics(t, func() {
		s.SetProperty(id, "status", true)
	})
}

package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/simcore/entity"
	"github.com/smilemakc/simcore/event"
	"github.com/smilemakc/simcore/query"
	"github.com/smilemakc/simcore/rng"
)

func setup(t *testing.T, n int, infectedEvery int) *entity.Store {
	t.Helper()
	bus := event.New()
	s := entity.New(bus)
	entity.RegisterProperty(s, "person", "infected", entity.Constant, false, nil, nil)
	for i := 0; i < n; i++ {
		id, err := s.AddEntity("person")
		require.NoError(t, err)
		if infectedEvery > 0 && i%infectedEvery == 0 {
			s.SetProperty(id, "infected", true)
		}
	}
	return s
}

func TestQueryResultUnindexedScan(t *testing.T) {
	s := setup(t, 10, 2)
	got := query.Result(s, "person", []query.Predicate{{Property: "infected", Value: true}})
	require.Len(t, got, 5)
}

func TestQueryResultIndexedFastPath(t *testing.T) {
	s := setup(t, 10, 2)
	entity.IndexProperty(s, "person", "infected")
	got := query.Result(s, "person", []query.Predicate{{Property: "infected", Value: true}})
	require.Len(t, got, 5)
}

func TestSampleEntityEmptyReturnsError(t *testing.T) {
	s := setup(t, 5, 0)
	reg := rng.New(42)
	_, err := query.SampleEntity(reg, "sampling", s, "person", []query.Predicate{{Property: "infected", Value: true}})
	require.Error(t, err)
}

func TestSampleEntitiesDeterministicAcrossRuns(t *testing.T) {
	s := setup(t, 100, 2)
	reg1 := rng.New(7)
	reg2 := rng.New(7)

	got1, err := query.SampleEntities(reg1, "sampling", s, "person", nil, 10)
	require.NoError(t, err)
	got2, err := query.SampleEntities(reg2, "sampling", s, "person", nil, 10)
	require.NoError(t, err)

	require.Equal(t, got1, got2)
	require.Len(t, got1, 10)
}

func TestQueryResultUsesMultiPropertyFastPath(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	entity.RegisterProperty(s, "person", "age_group", entity.Constant, "adult", nil, nil)
	entity.RegisterProperty(s, "person", "infected", entity.Constant, false, nil, nil)
	name := entity.RegisterMultiProperty(s, "person", "infected", "age_group")
	entity.IndexProperty(s, "person", name)

	var childInfected, untouched entity.ID
	for i := 0; i < 6; i++ {
		id, err := s.AddEntity("person")
		require.NoError(t, err)
		if i < 2 {
			s.SetProperty(id, "age_group", "child")
			s.SetProperty(id, "infected", true)
			childInfected = id
		} else if i == 5 {
			// Left entirely at its registered Constant defaults
			// ("adult", false) — never touched by SetProperty — to
			// confirm AddEntity/IndexProperty still bucket it.
			untouched = id
		}
	}

	// Query by the two individual predicates in the opposite order from
	// registration; this must be recognized as the registered
	// multi-property and answered from its single composite bucket.
	got := query.Result(s, "person", []query.Predicate{
		{Property: "age_group", Value: "child"},
		{Property: "infected", Value: true},
	})
	require.Len(t, got, 2)
	require.Contains(t, got, childInfected)

	adults := query.Result(s, "person", []query.Predicate{
		{Property: "age_group", Value: "adult"},
		{Property: "infected", Value: false},
	})
	require.Contains(t, adults, untouched)
	require.Len(t, adults, 4)
}

func TestTabulateGroupsByPropertyTuple(t *testing.T) {
	s := setup(t, 10, 2)
	rows := query.Tabulate(s, "person", []string{"infected"})
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	require.Equal(t, 10, total)
	require.Len(t, rows, 2)
}

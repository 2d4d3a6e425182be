package network_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/simcore/entity"
	"github.com/smilemakc/simcore/event"
	"github.com/smilemakc/simcore/network"
)

const personType = "person"

// buildHousehold creates n people and wires a dense (complete) intra-household
// network across them, mirroring the collaborator network module's role in
// a household-contact model: every pair within the same household is an edge.
func buildHousehold(t *testing.T, s *entity.Store, n int) []entity.ID {
	t.Helper()
	ids := make([]entity.ID, n)
	for i := 0; i < n; i++ {
		id, err := s.AddEntity(personType)
		require.NoError(t, err)
		ids[i] = id
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			network.AddEdge(s, personType, ids[i], ids[j])
		}
	}
	return ids
}

func TestDenseHouseholdGivesEveryMemberDegreeNMinusOne(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	network.Register(s, personType)

	// S2: a household of size 12 contributes 12 nodes of degree 11.
	members := buildHousehold(t, s, 12)
	for _, id := range members {
		require.Equal(t, 11, network.Degree(s, personType, id))
	}
}

func TestThreeHouseholdsOfElevenGiveThirtyThreeNodesOfDegreeTen(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	network.Register(s, personType)

	var degreeTen int
	for h := 0; h < 3; h++ {
		for _, id := range buildHousehold(t, s, 11) {
			if network.Degree(s, personType, id) == 10 {
				degreeTen++
			}
		}
	}
	require.Equal(t, 33, degreeTen)
}

func TestAddEdgeIsIdempotent(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	network.Register(s, personType)

	a, err := s.AddEntity(personType)
	require.NoError(t, err)
	b, err := s.AddEntity(personType)
	require.NoError(t, err)

	network.AddEdge(s, personType, a, b)
	network.AddEdge(s, personType, a, b) // duplicate, must not double the adjacency list

	require.Equal(t, 1, network.Degree(s, personType, a))
	require.Equal(t, 1, network.Degree(s, personType, b))
}

func TestNeighborsEmptyForIsolatedEntity(t *testing.T) {
	bus := event.New()
	s := entity.New(bus)
	network.Register(s, personType)

	id, err := s.AddEntity(personType)
	require.NoError(t, err)
	require.Empty(t, network.Neighbors(s, personType, id))
}

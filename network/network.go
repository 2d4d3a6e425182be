// Package network implements a contact-network module (household and
// social-contact graphs for models like S2's dense household network):
// an adjacency list stored entirely as an ordinary property of the
// entity it describes, so it is reachable through the same
// GetProperty/SetProperty surface as any other property rather than a
// separate subsystem.
package network

import (
	"github.com/smilemakc/simcore/entity"
)

const edgesProperty = "__network_edges"

// Register declares the adjacency-list property for entityType. Call
// once per entity type before adding edges.
func Register(store *entity.Store, entityType string) {
	if store.Descriptor(entityType, edgesProperty) != nil {
		return
	}
	entity.RegisterProperty(store, entityType, edgesProperty, entity.Constant, []entity.ID(nil), nil, nil)
}

// AddEdge records an undirected contact between a and b. Both entities
// must be of the same entityType that Register was called for.
func AddEdge(store *entity.Store, entityType string, a, b entity.ID) {
	addDirected(store, entityType, a, b)
	addDirected(store, entityType, b, a)
}

func addDirected(store *entity.Store, entityType string, from, to entity.ID) {
	current := Neighbors(store, entityType, from)
	for _, n := range current {
		if n == to {
			return // edge already present, no-op
		}
	}
	grown := append(append([]entity.ID(nil), current...), to)
	store.SetProperty(from, edgesProperty, grown)
}

// Neighbors returns id's current adjacency list.
func Neighbors(store *entity.Store, entityType string, id entity.ID) []entity.ID {
	v := store.GetProperty(id, edgesProperty)
	sl, _ := v.([]entity.ID)
	return sl
}

// Degree returns len(Neighbors(...)).
func Degree(store *entity.Store, entityType string, id entity.ID) int {
	return len(Neighbors(store, entityType, id))
}

package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/DoyleJ11/territory-backend/internal/graph"
)

// DefaultRules is the reference configuration: two seats, transfers of at
// least 10, one troop of growth per tick, one troop on a start node.
func DefaultRules() Rules {
	return Rules{SeatCapacity: 2, MinTransfer: 10, GrowthPerTick: 1, StartTroops: 1}
}

// NewState returns a game in the lobby phase with every node of g neutral.
func NewState(g *graph.Graph, rules Rules) State {
	s := State{
		Phase: PhaseLobby,
		Nodes: make(map[int]Node, g.Len()),
		Rules: rules,
	}
	for _, id := range g.IDs() {
		s.Nodes[id] = Node{ID: id}
	}
	return s
}

// Clone copies s deeply enough that writing to the copy leaves s untouched.
func (s State) Clone() State {
	s.Nodes = maps.Clone(s.Nodes)
	return s
}

// Owners returns the distinct non-neutral owners on the board, sorted.
func Owners(s State) []string {
	seen := map[string]bool{}
	for _, n := range s.Nodes {
		if !n.Neutral() {
			seen[n.Owner] = true
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// CheckInvariants reports the first node that breaks the troop rules.
func CheckInvariants(s State) error {
	for _, id := range slices.Sorted(maps.Keys(s.Nodes)) {
		n := s.Nodes[id]
		if n.Troops < 0 {
			return fmt.Errorf("node %d: negative troops %d", id, n.Troops)
		}
		if n.Neutral() && (n.Troops != 0 || n.OwnerColor != "") {
			return fmt.Errorf("node %d: neutral node holds %d troops, color %q", id, n.Troops, n.OwnerColor)
		}
	}
	return nil
}

// ContainsEvent reports whether any event in events has type eventType.
func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

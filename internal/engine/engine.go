package engine

import (
	"github.com/DoyleJ11/territory-backend/internal/graph"
	"github.com/DoyleJ11/territory-backend/internal/session"
)

// Phase is the lifecycle stage of a game.
type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseSelecting Phase = "selecting"
	PhaseRunning   Phase = "running"
	PhaseOver      Phase = "over"
)

// Node is the per-game state of one graph node.
type Node struct {
	ID         int
	Owner      string // "" is neutral
	OwnerColor session.Color
	Troops     int
}

// Neutral reports whether no seat owns n.
func (n Node) Neutral() bool { return n.Owner == "" }

// State is a full game. Reducers treat it as a value and clone Nodes before writing.
type State struct {
	Phase  Phase
	Nodes  map[int]Node
	Winner string
	Ticks  int
	Rules  Rules
}

// Rules are the tunable game constants.
type Rules struct {
	SeatCapacity  int
	MinTransfer   int
	GrowthPerTick int
	StartTroops   int
}

type CommandType string

const (
	CmdBindIdentity    CommandType = "BindIdentity"
	CmdSelectStartNode CommandType = "SelectStartNode"
	CmdTransferTroops  CommandType = "TransferTroops"
)

/*
	CmdSelectStartNode -> EvtStartNodeSelected
	CmdTransferTroops  -> EvtTroopsSent -> one of EvtNodeClaimed | EvtNodeReinforced |
	                      EvtAttackRepelled | EvtNodeCaptured | EvtNodeNeutralized
	CheckStart         -> EvtGameStarted
	CheckWinner        -> EvtGameOver
	Grow               -> EvtTroopsGrown
*/

// Command is a request from one session. Only the fields of its Type are read.
type Command struct {
	Type       CommandType
	SeatID     string
	NodeID     int
	FromNodeID int
	ToNodeID   int
	Amount     int
}

type EventType string

const (
	EvtStartNodeSelected EventType = "StartNodeSelected"
	EvtTroopsSent        EventType = "TroopsSent"
	EvtNodeClaimed       EventType = "NodeClaimed"
	EvtNodeReinforced    EventType = "NodeReinforced"
	EvtAttackRepelled    EventType = "AttackRepelled"
	EvtNodeCaptured      EventType = "NodeCaptured"
	EvtNodeNeutralized   EventType = "NodeNeutralized"
	EvtGameStarted       EventType = "GameStarted"
	EvtGameOver          EventType = "GameOver"
	EvtTroopsGrown       EventType = "TroopsGrown"
)

// Event records one effect of an applied command or tick.
type Event struct {
	Type       EventType
	SeatID     string
	NodeID     int
	FromNodeID int
	Amount     int
	Phase      Phase
}

// Apply validates cmd against s and returns the resulting state. On error the
// returned state is s, unchanged. seat is the issuing session as resolved by
// the caller.
func Apply(g *graph.Graph, seat session.Seat, s State, cmd Command) ([]Event, State, error) {
	if !Allowed(s.Phase, cmd.Type) {
		if !knownCommand(cmd.Type) {
			return nil, s, ErrUnsupportedCommand
		}
		return nil, s, ErrInvalidPhase
	}
	if seat.Observer() {
		return nil, s, ErrObserverForbidden
	}

	switch cmd.Type {
	case CmdSelectStartNode:
		if !seat.Bound() {
			return nil, s, ErrIdentityUnbound
		}
		if seat.Ready {
			return nil, s, ErrAlreadySelected
		}
		if !g.Has(cmd.NodeID) {
			return nil, s, ErrUnknownNode
		}
		node := s.Nodes[cmd.NodeID]
		if !node.Neutral() {
			return nil, s, ErrAlreadyOwned
		}

		newState := s.Clone()
		node.Owner = seat.ID
		node.OwnerColor = seat.Color
		node.Troops = s.Rules.StartTroops
		newState.Nodes[node.ID] = node

		events := []Event{
			{Type: EvtStartNodeSelected, SeatID: seat.ID, NodeID: node.ID, Amount: node.Troops},
		}
		return events, newState, nil

	case CmdTransferTroops:
		if !g.Has(cmd.FromNodeID) || !g.Has(cmd.ToNodeID) {
			return nil, s, ErrUnknownNode
		}
		if !g.Adjacent(cmd.FromNodeID, cmd.ToNodeID) {
			return nil, s, ErrNotAdjacent
		}
		from := s.Nodes[cmd.FromNodeID]
		if from.Owner != seat.ID {
			return nil, s, ErrNotOwner
		}
		if cmd.Amount < s.Rules.MinTransfer || cmd.Amount > from.Troops {
			return nil, s, ErrInsufficientTroops
		}

		newState := s.Clone()
		from.Troops -= cmd.Amount
		newState.Nodes[from.ID] = from

		to, outcome := Resolve(seat, cmd.Amount, s.Nodes[cmd.ToNodeID])
		newState.Nodes[to.ID] = to

		events := []Event{
			{Type: EvtTroopsSent, SeatID: seat.ID, FromNodeID: from.ID, NodeID: to.ID, Amount: cmd.Amount},
			{Type: outcome, SeatID: seat.ID, NodeID: to.ID, Amount: to.Troops},
		}
		return events, newState, nil

	default:
		// CmdBindIdentity only mutates the session registry.
		return nil, s, ErrUnsupportedCommand
	}
}

// Resolve lands amount troops of attacker on defender and reports which of the
// five outcomes happened.
func Resolve(attacker session.Seat, amount int, defender Node) (Node, EventType) {
	switch {
	case defender.Neutral():
		defender.Owner = attacker.ID
		defender.OwnerColor = attacker.Color
		defender.Troops = amount
		return defender, EvtNodeClaimed

	case defender.Owner == attacker.ID:
		defender.Troops += amount
		return defender, EvtNodeReinforced

	case amount < defender.Troops:
		defender.Troops -= amount
		return defender, EvtAttackRepelled

	case amount > defender.Troops:
		defender.Owner = attacker.ID
		defender.OwnerColor = attacker.Color
		defender.Troops = amount - defender.Troops
		return defender, EvtNodeCaptured

	default:
		return Node{ID: defender.ID}, EvtNodeNeutralized
	}
}

// CheckStart moves a game that is still selecting start nodes into the running
// phase once every seat is filled and ready. It fires at most once per game.
func CheckStart(s State, seats []session.Seat) (State, []Event) {
	if s.Phase != PhaseLobby && s.Phase != PhaseSelecting {
		return s, nil
	}
	if len(seats) < s.Rules.SeatCapacity {
		return s, nil
	}
	for _, seat := range seats {
		if !seat.Ready {
			return s, nil
		}
	}

	s.Phase = PhaseRunning
	return s, []Event{{Type: EvtGameStarted, Phase: PhaseRunning}}
}

// CheckWinner ends a running game when a single owner remains on the board.
func CheckWinner(s State) (State, []Event) {
	if s.Phase != PhaseRunning {
		return s, nil
	}
	owners := Owners(s)
	if len(owners) != 1 {
		return s, nil
	}

	s.Phase = PhaseOver
	s.Winner = owners[0]
	return s, []Event{{Type: EvtGameOver, SeatID: s.Winner, Phase: PhaseOver}}
}

// Grow adds the per-tick growth to every owned node. It reports false, leaving
// s unchanged, outside the running phase.
func Grow(s State) (State, bool) {
	if s.Phase != PhaseRunning {
		return s, false
	}

	newState := s.Clone()
	for id, n := range newState.Nodes {
		if n.Neutral() {
			continue
		}
		n.Troops += s.Rules.GrowthPerTick
		newState.Nodes[id] = n
	}
	newState.Ticks++
	return newState, true
}

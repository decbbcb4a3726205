package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/DoyleJ11/territory-backend/internal/graph"
	"github.com/DoyleJ11/territory-backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seatX = session.Seat{ID: "x", Name: "Xena", Color: session.ColorRed, Role: session.RoleSeat, Ready: true}
	seatY = session.Seat{ID: "y", Name: "Yuri", Color: session.ColorBlue, Role: session.RoleSeat, Ready: true}
	obs   = session.Seat{ID: "o", Name: "Observer-o", Color: session.ColorObserver, Role: session.RoleObserver}
)

func runningState(g *graph.Graph, nodes ...Node) State {
	s := NewState(g, DefaultRules())
	s.Phase = PhaseRunning
	for _, n := range nodes {
		s.Nodes[n.ID] = n
	}
	return s
}

func owned(id int, seat session.Seat, troops int) Node {
	return Node{ID: id, Owner: seat.ID, OwnerColor: seat.Color, Troops: troops}
}

func TestSelectStartNode(t *testing.T) {
	g := graph.Reference()
	fresh := session.Seat{ID: "x", Name: "Xena", Color: session.ColorRed, Role: session.RoleSeat}
	unbound := session.Seat{ID: "x", Color: session.ColorUnset, Role: session.RoleSeat}

	selecting := NewState(g, DefaultRules())
	selecting.Phase = PhaseSelecting
	taken := selecting.Clone()
	taken.Nodes[3] = owned(3, seatY, 1)

	cases := []struct {
		name    string
		setup   State
		seat    session.Seat
		nodeID  int
		wantErr error
	}{
		{name: "running phase", setup: runningState(g), seat: fresh, nodeID: 1, wantErr: ErrInvalidPhase},
		{name: "observer", setup: selecting, seat: obs, nodeID: 1, wantErr: ErrObserverForbidden},
		{name: "unbound identity", setup: selecting, seat: unbound, nodeID: 1, wantErr: ErrIdentityUnbound},
		{name: "already selected", setup: selecting, seat: seatX, nodeID: 1, wantErr: ErrAlreadySelected},
		{name: "unknown node", setup: selecting, seat: fresh, nodeID: 42, wantErr: ErrUnknownNode},
		{name: "owned node", setup: taken, seat: fresh, nodeID: 3, wantErr: ErrAlreadyOwned},
		{name: "legal in lobby", setup: NewState(g, DefaultRules()), seat: fresh, nodeID: 1},
		{name: "legal while selecting", setup: selecting, seat: fresh, nodeID: 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := Command{Type: CmdSelectStartNode, SeatID: tc.seat.ID, NodeID: tc.nodeID}
			events, got, err := Apply(g, tc.seat, tc.setup, cmd)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				if !reflect.DeepEqual(got, tc.setup) {
					t.Fatalf("rejected command changed state")
				}
				return
			}
			require.NoError(t, err)
			assert.True(t, ContainsEvent(events, EvtStartNodeSelected))
			assert.Equal(t, owned(tc.nodeID, tc.seat, 1), got.Nodes[tc.nodeID])
			assert.Equal(t, Node{ID: tc.nodeID}, tc.setup.Nodes[tc.nodeID], "input state mutated")
		})
	}
}

func TestTransferTroops_ValidationOrder(t *testing.T) {
	g := graph.Reference()
	base := runningState(g, owned(1, seatX, 20), owned(2, seatY, 30))

	cases := []struct {
		name    string
		setup   State
		seat    session.Seat
		cmd     Command
		wantErr error
	}{
		{
			name:    "not running",
			setup:   NewState(g, DefaultRules()),
			seat:    seatX,
			cmd:     Command{FromNodeID: 1, ToNodeID: 2, Amount: 10},
			wantErr: ErrInvalidPhase,
		},
		{
			name:    "observer",
			setup:   base,
			seat:    obs,
			cmd:     Command{FromNodeID: 1, ToNodeID: 2, Amount: 10},
			wantErr: ErrObserverForbidden,
		},
		{
			name:    "unknown source",
			setup:   base,
			seat:    seatX,
			cmd:     Command{FromNodeID: 0, ToNodeID: 2, Amount: 10},
			wantErr: ErrUnknownNode,
		},
		{
			name:    "unknown target beats adjacency",
			setup:   base,
			seat:    seatX,
			cmd:     Command{FromNodeID: 1, ToNodeID: 99, Amount: 10},
			wantErr: ErrUnknownNode,
		},
		{
			name:    "two hops away",
			setup:   base,
			seat:    seatX,
			cmd:     Command{FromNodeID: 1, ToNodeID: 9, Amount: 10},
			wantErr: ErrNotAdjacent,
		},
		{
			name:    "same node",
			setup:   base,
			seat:    seatX,
			cmd:     Command{FromNodeID: 1, ToNodeID: 1, Amount: 10},
			wantErr: ErrNotAdjacent,
		},
		{
			name:    "not owner",
			setup:   base,
			seat:    seatX,
			cmd:     Command{FromNodeID: 2, ToNodeID: 1, Amount: 10},
			wantErr: ErrNotOwner,
		},
		{
			name:    "below minimum",
			setup:   base,
			seat:    seatX,
			cmd:     Command{FromNodeID: 1, ToNodeID: 2, Amount: 9},
			wantErr: ErrInsufficientTroops,
		},
		{
			name:    "overdraw",
			setup:   base,
			seat:    seatX,
			cmd:     Command{FromNodeID: 1, ToNodeID: 2, Amount: 21},
			wantErr: ErrInsufficientTroops,
		},
		{
			name:  "whole garrison",
			setup: base,
			seat:  seatX,
			cmd:   Command{FromNodeID: 1, ToNodeID: 4, Amount: 20},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cmd.Type = CmdTransferTroops
			tc.cmd.SeatID = tc.seat.ID
			_, got, err := Apply(g, tc.seat, tc.setup, tc.cmd)
			if tc.wantErr == nil {
				require.NoError(t, err)
				require.NoError(t, CheckInvariants(got))
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			if !reflect.DeepEqual(got, tc.setup) {
				t.Fatalf("rejected command changed state")
			}
		})
	}
}

func TestTransferTroops_Scenarios(t *testing.T) {
	g := graph.Reference()

	t.Run("claim neutral", func(t *testing.T) {
		s := runningState(g, owned(1, seatX, 20), owned(9, seatY, 5))
		events, got, err := Apply(g, seatX, s, Command{Type: CmdTransferTroops, SeatID: "x", FromNodeID: 1, ToNodeID: 2, Amount: 15})
		require.NoError(t, err)
		assert.Equal(t, 5, got.Nodes[1].Troops)
		assert.Equal(t, owned(2, seatX, 15), got.Nodes[2])
		assert.True(t, ContainsEvent(events, EvtNodeClaimed))
	})

	t.Run("equal forces neutralize", func(t *testing.T) {
		s := runningState(g, owned(2, seatX, 15), owned(3, seatY, 10))
		events, got, err := Apply(g, seatX, s, Command{Type: CmdTransferTroops, SeatID: "x", FromNodeID: 2, ToNodeID: 3, Amount: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, got.Nodes[2].Troops)
		assert.Equal(t, Node{ID: 3}, got.Nodes[3])
		assert.True(t, ContainsEvent(events, EvtNodeNeutralized))
	})

	t.Run("larger force captures", func(t *testing.T) {
		s := runningState(g, owned(2, seatX, 12), owned(3, seatY, 10))
		events, got, err := Apply(g, seatX, s, Command{Type: CmdTransferTroops, SeatID: "x", FromNodeID: 2, ToNodeID: 3, Amount: 12})
		require.NoError(t, err)
		assert.Equal(t, owned(3, seatX, 2), got.Nodes[3])
		assert.True(t, ContainsEvent(events, EvtNodeCaptured))
	})

	t.Run("reinforce own node", func(t *testing.T) {
		s := runningState(g, owned(5, seatX, 30), owned(6, seatX, 4), owned(9, seatY, 1))
		events, got, err := Apply(g, seatX, s, Command{Type: CmdTransferTroops, SeatID: "x", FromNodeID: 5, ToNodeID: 6, Amount: 10})
		require.NoError(t, err)
		assert.Equal(t, 20, got.Nodes[5].Troops)
		assert.Equal(t, owned(6, seatX, 14), got.Nodes[6])
		assert.True(t, ContainsEvent(events, EvtNodeReinforced))
	})

	t.Run("defender survives", func(t *testing.T) {
		s := runningState(g, owned(5, seatX, 30), owned(6, seatY, 25))
		events, got, err := Apply(g, seatX, s, Command{Type: CmdTransferTroops, SeatID: "x", FromNodeID: 5, ToNodeID: 6, Amount: 10})
		require.NoError(t, err)
		assert.Equal(t, owned(6, seatY, 15), got.Nodes[6])
		assert.True(t, ContainsEvent(events, EvtAttackRepelled))
	})
}

func TestResolve_Totality(t *testing.T) {
	minAmount := DefaultRules().MinTransfer
	for d := 0; d <= 40; d++ {
		for a := minAmount; a <= 40; a++ {
			defender := owned(3, seatY, d)
			got, outcome := Resolve(seatX, a, defender)

			switch {
			case a < d:
				assert.Equal(t, EvtAttackRepelled, outcome, "a=%d d=%d", a, d)
				assert.Equal(t, owned(3, seatY, d-a), got)
			case a > d:
				assert.Equal(t, EvtNodeCaptured, outcome, "a=%d d=%d", a, d)
				assert.Equal(t, owned(3, seatX, a-d), got)
			default:
				assert.Equal(t, EvtNodeNeutralized, outcome, "a=%d d=%d", a, d)
				assert.Equal(t, Node{ID: 3}, got)
			}
			require.NoError(t, CheckInvariants(State{Nodes: map[int]Node{3: got}}))
		}
	}
}

func TestCheckStart_FiresOnce(t *testing.T) {
	g := graph.Reference()
	s := NewState(g, DefaultRules())
	s.Phase = PhaseSelecting

	notReady := seatY
	notReady.Ready = false

	s, events := CheckStart(s, []session.Seat{seatX})
	assert.Empty(t, events, "one seat of two")
	s, events = CheckStart(s, []session.Seat{seatX, notReady})
	assert.Empty(t, events, "second seat not ready")

	s, events = CheckStart(s, []session.Seat{seatX, seatY})
	require.True(t, ContainsEvent(events, EvtGameStarted))
	assert.Equal(t, PhaseRunning, s.Phase)

	s, events = CheckStart(s, []session.Seat{seatX, seatY})
	assert.Empty(t, events, "duplicate re-check fired again")
	assert.Equal(t, PhaseRunning, s.Phase)
}

func TestCheckWinner(t *testing.T) {
	g := graph.Reference()

	s := runningState(g, owned(1, seatX, 3), owned(2, seatY, 3))
	s, events := CheckWinner(s)
	assert.Empty(t, events)
	assert.Equal(t, PhaseRunning, s.Phase)

	s.Nodes[2] = Node{ID: 2}
	s, events = CheckWinner(s)
	require.True(t, ContainsEvent(events, EvtGameOver))
	assert.Equal(t, PhaseOver, s.Phase)
	assert.Equal(t, "x", s.Winner)

	_, events = CheckWinner(s)
	assert.Empty(t, events, "game over fired twice")
}

func TestCaptureEndsGame_ThenTransfersIgnored(t *testing.T) {
	g := graph.Reference()
	s := runningState(g, owned(1, seatX, 30), owned(2, seatY, 10))

	_, s, err := Apply(g, seatX, s, Command{Type: CmdTransferTroops, SeatID: "x", FromNodeID: 1, ToNodeID: 2, Amount: 20})
	require.NoError(t, err)
	s, events := CheckWinner(s)
	require.True(t, ContainsEvent(events, EvtGameOver))

	before := s.Clone()
	_, after, err := Apply(g, seatX, s, Command{Type: CmdTransferTroops, SeatID: "x", FromNodeID: 2, ToNodeID: 3, Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.Equal(t, before, after)
}

func TestGrow(t *testing.T) {
	g := graph.Reference()

	lobby := NewState(g, DefaultRules())
	got, ok := Grow(lobby)
	assert.False(t, ok)
	assert.Equal(t, lobby, got)

	s := runningState(g, owned(1, seatX, 0), owned(9, seatY, 7))
	got, ok = Grow(s)
	require.True(t, ok)
	assert.Equal(t, 1, got.Nodes[1].Troops)
	assert.Equal(t, 8, got.Nodes[9].Troops)
	assert.Equal(t, 0, got.Nodes[5].Troops, "neutral node grew")
	assert.Equal(t, 1, got.Ticks)
	assert.Equal(t, 7, s.Nodes[9].Troops, "input state mutated")
}

func TestApply_UnsupportedCommand(t *testing.T) {
	g := graph.Reference()
	s := runningState(g)
	_, _, err := Apply(g, seatX, s, Command{Type: "Teleport"})
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "not_adjacent", Reason(ErrNotAdjacent))
	assert.Equal(t, "insufficient_or_below_minimum", Reason(ErrInsufficientTroops))
	assert.Equal(t, "rejected", Reason(errors.New("boom")))
}

func TestAllowed(t *testing.T) {
	cases := []struct {
		phase Phase
		cmd   CommandType
		want  bool
	}{
		{PhaseLobby, CmdSelectStartNode, true},
		{PhaseSelecting, CmdBindIdentity, true},
		{PhaseSelecting, CmdTransferTroops, false},
		{PhaseRunning, CmdTransferTroops, true},
		{PhaseRunning, CmdBindIdentity, false},
		{PhaseOver, CmdTransferTroops, false},
		{PhaseOver, CmdSelectStartNode, false},
	}
	for _, tc := range cases {
		if got := Allowed(tc.phase, tc.cmd); got != tc.want {
			t.Fatalf("Allowed(%s, %s) = %v, want %v", tc.phase, tc.cmd, got, tc.want)
		}
	}
}

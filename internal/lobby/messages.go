package lobby

import (
	"github.com/DoyleJ11/territory-backend/internal/engine"
	"github.com/DoyleJ11/territory-backend/internal/session"
)

type Msg interface{ isLobbyMsg() }

type Join struct {
	Outbox chan Notification // where this client wants to receive notifications
	Reply  chan session.Seat
}

func (Join) isLobbyMsg() {}

// Leave is informational for the board: nodes owned by the session stay owned.
type Leave struct{ SessionID string }

func (Leave) isLobbyMsg() {}

type BindIdentity struct {
	SessionID string
	Name      string
	Color     session.Color
}

func (BindIdentity) isLobbyMsg() {}

type FromClient struct {
	SessionID string
	Cmd       engine.Command
}

func (FromClient) isLobbyMsg() {}

// Tick applies one growth step. The lobby's own ticker produces these; tests
// send them directly.
type Tick struct{}

func (Tick) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type View struct {
	Code       string
	Version    int
	NumClients int
	State      engine.State
	Snapshot   Snapshot
}

type NoteType string

const (
	NoteWelcome          NoteType = "welcome"
	NoteGameState        NoteType = "game_state"
	NoteSelectionSuccess NoteType = "select_start_node_success"
	NotePhaseChanged     NoteType = "phase_changed"
	NoteGameOver         NoteType = "game_over"
	NoteRejected         NoteType = "rejected"
)

// Notification is everything the lobby pushes to a client outbox.
type Notification struct {
	Type       NoteType
	Version    int
	State      *Snapshot
	Seat       *session.Seat
	Phase      engine.Phase
	WinnerID   string
	WinnerName string
	Reason     string
}

type Snapshot struct {
	Phase   engine.Phase   `json:"phase"`
	Nodes   []NodeView     `json:"nodes"`
	Players []session.Seat `json:"players"`
}

type NodeView struct {
	ID         int            `json:"id"`
	Adjacency  []int          `json:"adjacency"`
	Owner      *string        `json:"owner"`
	OwnerColor *session.Color `json:"ownerColor"`
	Troops     int            `json:"troops"`
}

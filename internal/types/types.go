package types

import (
	"github.com/DoyleJ11/territory-backend/internal/engine"
	"github.com/DoyleJ11/territory-backend/internal/lobby"
	"github.com/DoyleJ11/territory-backend/internal/session"
)

const (
	MsgSetPlayerInfo   = "set_player_info"
	MsgSelectStartNode = "select_start_node"
	MsgSendTroops      = "send_troops"
)

type ClientMessage struct {
	Type       string `json:"type"`
	Name       string `json:"name,omitempty"`
	Color      string `json:"color,omitempty"`
	NodeID     int    `json:"node_id,omitempty"`
	FromNodeID int    `json:"from_node_id,omitempty"`
	ToNodeID   int    `json:"to_node_id,omitempty"`
	Amount     int    `json:"amount,omitempty"`
}

type ServerMessage struct {
	Type       string          `json:"type"` // see lobby.NoteType, plus "error"
	Version    int             `json:"version,omitempty"`
	State      *lobby.Snapshot `json:"state,omitempty"`
	Seat       *session.Seat   `json:"seat,omitempty"`
	Phase      engine.Phase    `json:"phase,omitempty"`
	WinnerID   string          `json:"winner_id,omitempty"`
	WinnerName string          `json:"winner_name,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func FromNotification(n lobby.Notification) ServerMessage {
	return ServerMessage{
		Type:       string(n.Type),
		Version:    n.Version,
		State:      n.State,
		Seat:       n.Seat,
		Phase:      n.Phase,
		WinnerID:   n.WinnerID,
		WinnerName: n.WinnerName,
		Reason:     n.Reason,
	}
}

// ToLobbyMsg translates a client message for the session that sent it.
func ToLobbyMsg(sessionID string, m ClientMessage) (lobby.Msg, bool) {
	switch m.Type {
	case MsgSetPlayerInfo:
		return lobby.BindIdentity{SessionID: sessionID, Name: m.Name, Color: session.Color(m.Color)}, true
	case MsgSelectStartNode:
		return lobby.FromClient{SessionID: sessionID, Cmd: engine.Command{
			Type:   engine.CmdSelectStartNode,
			NodeID: m.NodeID,
		}}, true
	case MsgSendTroops:
		return lobby.FromClient{SessionID: sessionID, Cmd: engine.Command{
			Type:       engine.CmdTransferTroops,
			FromNodeID: m.FromNodeID,
			ToNodeID:   m.ToNodeID,
			Amount:     m.Amount,
		}}, true
	default:
		return nil, false
	}
}

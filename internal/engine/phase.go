package engine

var legalCommands = map[Phase][]CommandType{
	PhaseLobby:     {CmdBindIdentity, CmdSelectStartNode},
	PhaseSelecting: {CmdBindIdentity, CmdSelectStartNode},
	PhaseRunning:   {CmdTransferTroops},
	PhaseOver:      {},
}

// Allowed reports whether a command of type t may be applied in phase p.
func Allowed(p Phase, t CommandType) bool {
	for _, c := range legalCommands[p] {
		if c == t {
			return true
		}
	}
	return false
}

func knownCommand(t CommandType) bool {
	switch t {
	case CmdBindIdentity, CmdSelectStartNode, CmdTransferTroops:
		return true
	}
	return false
}

// OpenSelection marks the game as selecting once the first seat sits down.
func OpenSelection(s State) State {
	if s.Phase == PhaseLobby {
		s.Phase = PhaseSelecting
	}
	return s
}

package engine

import "errors"

var ErrInvalidPhase = errors.New("command not legal in current phase")
var ErrUnknownNode = errors.New("unknown node")
var ErrNotAdjacent = errors.New("target node is not adjacent")
var ErrNotOwner = errors.New("seat does not own the source node")
var ErrInsufficientTroops = errors.New("amount below minimum or above available troops")
var ErrAlreadyOwned = errors.New("node already owned")
var ErrObserverForbidden = errors.New("observers cannot issue commands")
var ErrUnknownSeat = errors.New("unknown seat")
var ErrIdentityUnbound = errors.New("seat has not bound a display identity")
var ErrAlreadySelected = errors.New("seat already selected a start node")
var ErrUnsupportedCommand = errors.New("unsupported command")

var reasons = []struct {
	err  error
	code string
}{
	{ErrInvalidPhase, "invalid_phase"},
	{ErrUnknownNode, "unknown_node"},
	{ErrNotAdjacent, "not_adjacent"},
	{ErrNotOwner, "not_owner"},
	{ErrInsufficientTroops, "insufficient_or_below_minimum"},
	{ErrAlreadyOwned, "already_owned"},
	{ErrObserverForbidden, "observer_forbidden"},
	{ErrUnknownSeat, "unknown_seat"},
	{ErrIdentityUnbound, "identity_unbound"},
	{ErrAlreadySelected, "already_selected"},
	{ErrUnsupportedCommand, "unsupported_command"},
}

// Reason maps a rejection to a stable code clients can switch on.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.code
		}
	}
	return "rejected"
}

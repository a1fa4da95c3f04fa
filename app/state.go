package app

import (
	"fmt"
)

type State uint8

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

type Event uint8

const (
	ConnectRequested Event = iota
	AccountsGranted
	AccountsDenied
	DisconnectRequested
)

func (e Event) String() string {
	switch e {
	case ConnectRequested:
		return "connect requested"
	case AccountsGranted:
		return "accounts granted"
	case AccountsDenied:
		return "accounts denied"
	default:
		return "disconnect requested"
	}
}

// Refresh is a set of contract reads.
type Refresh uint8

const (
	RefreshName Refresh = 1 << iota
	RefreshOwner
	RefreshBalance

	RefreshNone Refresh = 0
	RefreshAll          = RefreshName | RefreshOwner | RefreshBalance
)

func (r Refresh) Has(other Refresh) bool {
	return r&other == other
}

// Transition is the outcome of an event: the next state, the reads to run
// and whether the mirrored contract state is dropped.
type Transition struct {
	To      State
	Refresh Refresh
	Reset   bool
}

// Next is the connection state machine. Connecting again while connected
// is a no-op.
func Next(from State, e Event) (Transition, error) {
	switch {
	case from == Disconnected && e == ConnectRequested:
		return Transition{To: Connecting}, nil
	case from == Connecting && e == AccountsGranted:
		return Transition{To: Connected, Refresh: RefreshAll}, nil
	case from == Connecting && e == AccountsDenied,
		from == Connecting && e == DisconnectRequested,
		from == Connected && e == DisconnectRequested:
		return Transition{To: Disconnected, Reset: true}, nil
	case from == Connected && e == ConnectRequested:
		return Transition{To: Connected}, nil
	case from == Disconnected && e == DisconnectRequested:
		return Transition{To: Disconnected}, nil
	}
	return Transition{To: from}, fmt.Errorf("invalid transition: %s on %s", e, from)
}

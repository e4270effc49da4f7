package debugger

import (
	"github.com/lerencao/SOMns/source"
)

// Side distinguishes the two breakpoint registries of an actor.
type Side uint8

const (
	// ReceiverSide breakpoints pause the receiving actor before the
	// matching message is delivered.
	ReceiverSide Side = iota

	// SenderSide breakpoints defer the pause to resolution time of the
	// promise produced by the matching send.
	SenderSide
)

// String returns the string representation of Side.
func (s Side) String() string {
	switch s {
	case ReceiverSide:
		return "receiver"
	case SenderSide:
		return "sender"
	default:
		return "unknown"
	}
}

// ParseSide maps the wire form back to a Side. Anything that is not
// "sender" is the receiver side.
func ParseSide(s string) Side {
	if s == "sender" {
		return SenderSide
	}
	return ReceiverSide
}

// Breakpoint marks a source location at which message delivery should
// pause. Breakpoints are created and removed by the debugging front
// end; the scheduling core only ever reads them.
type Breakpoint struct {
	// Location is the call-site key the breakpoint matches on.
	Location source.Location

	// Enabled gates matching without removing the registration.
	Enabled bool
}

// NewBreakpoint returns an enabled breakpoint for the given location.
func NewBreakpoint(loc source.Location) *Breakpoint {
	return &Breakpoint{Location: loc, Enabled: true}
}

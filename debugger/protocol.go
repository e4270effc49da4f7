// Wire protocol between the debugger front end and the session.
// Commands flow client to runtime, events flow runtime to client,
// both as JSON.
package debugger

import (
	"github.com/lerencao/SOMns/source"
)

// Command actions accepted from a front end.
const (
	ActionAttach           = "attach"
	ActionPause            = "pause"
	ActionResume           = "resume"
	ActionStepInto         = "stepInto"
	ActionStepOver         = "stepOver"
	ActionStepReturn       = "stepReturn"
	ActionAddBreakpoint    = "addBreakpoint"
	ActionRemoveBreakpoint = "removeBreakpoint"
)

// Event types sent to a front end.
const (
	EventActorPaused   = "actorPaused"
	EventActorResumed  = "actorResumed"
	EventBreakpointHit = "breakpointHit"
	EventPromiseHalt   = "promiseHalt"
)

// LocationSpec is the wire form of a source location.
type LocationSpec struct {
	Origin    string `json:"origin"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	CharIndex int    `json:"charIndex"`
}

// Location converts the wire form to a source.Location key.
func (ls LocationSpec) Location() source.Location {
	return source.Location{
		Origin:      ls.Origin,
		StartLine:   ls.Line,
		StartColumn: ls.Column,
		CharIndex:   ls.CharIndex,
	}
}

// SpecOf converts a location key to its wire form.
func SpecOf(loc source.Location) *LocationSpec {
	return &LocationSpec{
		Origin:    loc.Origin,
		Line:      loc.StartLine,
		Column:    loc.StartColumn,
		CharIndex: loc.CharIndex,
	}
}

// Command is one debugger request.
type Command struct {
	Action   string        `json:"action"`
	Actor    uint32        `json:"actor,omitempty"`
	Location *LocationSpec `json:"location,omitempty"`
	Side     string        `json:"side,omitempty"`
}

// Event is one notification from the runtime to the front end.
type Event struct {
	Type     string        `json:"type"`
	Actor    uint32        `json:"actor,omitempty"`
	State    string        `json:"state,omitempty"`
	Selector string        `json:"selector,omitempty"`
	Value    string        `json:"value,omitempty"`
	Location *LocationSpec `json:"location,omitempty"`
}

package debugger

import (
	"fmt"
	"log"
	"sync"

	"github.com/lerencao/SOMns/actors"
	"github.com/lerencao/SOMns/source"
)

const eventBufferSize = 256

// SessionBreakpoint describes one breakpoint to install session-wide.
type SessionBreakpoint struct {
	Location source.Location
	Side     Side
	Enabled  bool
}

// Session owns the system-wide debugging state: the set of
// debug-attached actors and the event stream consumed by front ends.
// It is passed by reference into every actor's state machine; there is
// no ambient global debugging state.
//
// Session implements actors.HaltHandler, so promise resolutions with a
// halt-on-resolver flag surface here as promiseHalt events.
type Session struct {
	mu     sync.Mutex
	actors map[actors.ActorID]*Actor

	// applied tracks breakpoints installed from configuration, so a
	// hot reload can replace them without touching breakpoints set
	// interactively by a front end.
	applied []SessionBreakpoint

	events chan Event
}

// NewSession creates an empty debugging session.
func NewSession() *Session {
	return &Session{
		actors: make(map[actors.ActorID]*Actor),
		events: make(chan Event, eventBufferSize),
	}
}

// Attach wraps base with a debugging state machine registered on this
// session. Breakpoints already applied from configuration are
// installed on the new actor.
func (s *Session) Attach(base *actors.Actor) *Actor {
	d := NewActor(base, s)

	s.mu.Lock()
	s.actors[base.ID()] = d
	for _, bp := range s.applied {
		d.AddBreakpoint(&Breakpoint{Location: bp.Location, Enabled: bp.Enabled}, bp.Side)
	}
	s.mu.Unlock()

	return d
}

// Detach removes the actor from the session.
func (s *Session) Detach(id actors.ActorID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actors, id)
}

// Actor finds a debug-attached actor by ID.
func (s *Session) Actor(id actors.ActorID) (*Actor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.actors[id]
	return d, ok
}

// Actors returns all debug-attached actors.
func (s *Session) Actors() []*Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Actor, 0, len(s.actors))
	for _, d := range s.actors {
		out = append(out, d)
	}
	return out
}

// Events returns the stream of debugger events.
func (s *Session) Events() <-chan Event {
	return s.events
}

// ApplyBreakpoints replaces the configuration-sourced breakpoints on
// every attached actor. Used for hot reload.
func (s *Session) ApplyBreakpoints(bps []SessionBreakpoint) {
	s.mu.Lock()
	old := s.applied
	s.applied = bps
	actorsSnapshot := make([]*Actor, 0, len(s.actors))
	for _, d := range s.actors {
		actorsSnapshot = append(actorsSnapshot, d)
	}
	s.mu.Unlock()

	for _, d := range actorsSnapshot {
		for _, bp := range old {
			d.RemoveBreakpoint(bp.Location, bp.Side)
		}
		for _, bp := range bps {
			d.AddBreakpoint(&Breakpoint{Location: bp.Location, Enabled: bp.Enabled}, bp.Side)
		}
	}
}

// Halt implements actors.HaltHandler: a promise with a halt-on-resolver
// flag is about to commit its value.
func (s *Session) Halt(value actors.Value) {
	s.publish(Event{
		Type:  EventPromiseHalt,
		Value: fmt.Sprint(value),
	})
}

func (s *Session) publishBreakpointHit(d *Actor, msg *actors.EventualMessage) {
	s.publish(Event{
		Type:     EventBreakpointHit,
		Actor:    uint32(d.base.ID()),
		Selector: msg.Selector,
		Location: SpecOf(msg.CallSite),
	})
}

func (s *Session) publishPaused(d *Actor) {
	s.publish(Event{
		Type:  EventActorPaused,
		Actor: uint32(d.base.ID()),
	})
}

func (s *Session) publishResumed(d *Actor) {
	s.publish(Event{
		Type:  EventActorResumed,
		Actor: uint32(d.base.ID()),
	})
}

// publish never blocks the scheduling core; with no front end draining
// the stream, events are dropped.
func (s *Session) publish(e Event) {
	select {
	case s.events <- e:
	default:
		log.Printf("debugger: dropping event %s for actor %d", e.Type, e.Actor)
	}
}

// logMessageDelivered records a delivery authorized while stepping.
func (s *Session) logMessageDelivered(d *Actor, msg *actors.EventualMessage) {
	log.Printf("debugger: actor %d: delivering %v while %v", d.base.ID(), msg, d.pausedState)
}

package debugger

import (
	"log"
	"sync"

	"github.com/lerencao/SOMns/actors"
	"github.com/lerencao/SOMns/source"
)

// State enumerates the debugging life cycle of an actor.
//
//   - all messages arriving in Initial belong to initialization code
//     and are buffered until the debugger attaches
//   - Running is set when the debugger attaches
//   - Paused is set by a message breakpoint (implicit activation) or
//     by an explicit pause command
//   - Command, Breakpoint, StepInto, StepOver and StepReturn
//     distinguish between the paused substates
type State uint8

const (
	StateInitial State = iota
	StateRunning
	StatePaused
	StateCommand
	StateBreakpoint
	StateStepInto
	StateStepOver
	StateStepReturn
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCommand:
		return "command"
	case StateBreakpoint:
		return "breakpoint"
	case StateStepInto:
		return "stepInto"
	case StateStepOver:
		return "stepOver"
	case StateStepReturn:
		return "stepReturn"
	default:
		return "unknown"
	}
}

// Actor augments a base actor with a pause/step state machine and
// per-location breakpoint registries. It installs itself as the base
// actor's delivery interceptor, so every incoming message runs through
// the schedule decision below, and every completed turn reports back
// through Leave.
//
// A buffered-but-undelivered message lives in the inbox; a message
// released for execution lives in the base mailbox. The two queues are
// disjoint: a message is in exactly one of them at any time.
type Actor struct {
	base    *actors.Actor
	session *Session

	mu             sync.Mutex
	debuggingState State
	pausedState    State

	// inbox buffers messages that cannot be delivered because the
	// actor is paused or has not started yet.
	inbox []*actors.EventualMessage

	// receiverBreakpoints match the call sites of incoming messages.
	receiverBreakpoints map[source.Location]*Breakpoint

	// senderBreakpoints match the call sites of outgoing messages.
	senderBreakpoints map[source.Location]*Breakpoint
}

// NewActor wraps base with a debugging state machine. The session may
// be nil for detached use.
func NewActor(base *actors.Actor, session *Session) *Actor {
	d := &Actor{
		base:                base,
		session:             session,
		debuggingState:      StateInitial,
		pausedState:         StateInitial,
		receiverBreakpoints: make(map[source.Location]*Breakpoint),
		senderBreakpoints:   make(map[source.Location]*Breakpoint),
	}
	base.SetInterceptor(d)
	return d
}

// Base returns the wrapped base actor.
func (d *Actor) Base() *actors.Actor {
	return d.base
}

// ID returns the identifier of the wrapped actor.
func (d *Actor) ID() actors.ActorID {
	return d.base.ID()
}

// Start transitions the actor out of Initial once the debugger
// attaches. Messages buffered before the start stay in the inbox until
// a step command drains them.
func (d *Actor) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.debuggingState == StateInitial {
		d.debuggingState = StateRunning
	}
}

// IsStarted reports whether the actor has left the Initial state.
func (d *Actor) IsStarted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.debuggingState != StateInitial
}

// IsPaused reports whether the actor is paused.
func (d *Actor) IsPaused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.debuggingState == StatePaused
}

// IsPausedByBreakpoint reports whether the pause was caused by a
// receiver-side breakpoint hit.
func (d *Actor) IsPausedByBreakpoint() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pausedState == StateBreakpoint
}

// IsInStepInto reports whether a step-into is in progress.
func (d *Actor) IsInStepInto() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pausedState == StateStepInto
}

// IsInStepOver reports whether a step-over is in progress.
func (d *Actor) IsInStepOver() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pausedState == StateStepOver
}

// IsInStepReturn reports whether a step-return is in progress.
func (d *Actor) IsInStepReturn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pausedState == StateStepReturn
}

// States returns a snapshot of both state fields.
func (d *Actor) States() (debugging, paused State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.debuggingState, d.pausedState
}

// InboxLen returns the number of buffered-but-undelivered messages.
func (d *Actor) InboxLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inbox)
}

// AddBreakpoint registers a breakpoint on the given side.
func (d *Actor) AddBreakpoint(bp *Breakpoint, side Side) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if side == ReceiverSide {
		d.receiverBreakpoints[bp.Location] = bp
	} else {
		d.senderBreakpoints[bp.Location] = bp
	}
}

// RemoveBreakpoint drops the breakpoint registered for the location on
// the given side.
func (d *Actor) RemoveBreakpoint(loc source.Location, side Side) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if side == ReceiverSide {
		delete(d.receiverBreakpoints, loc)
	} else {
		delete(d.senderBreakpoints, loc)
	}
}

// isBreakpointed reports whether the call site matches an enabled
// breakpoint on the given side. Locations are structural keys, so the
// linear scan of the original becomes a map lookup.
func (d *Actor) isBreakpointed(loc source.Location, side Side) bool {
	var bp *Breakpoint
	if side == ReceiverSide {
		bp = d.receiverBreakpoints[loc]
	} else {
		bp = d.senderBreakpoints[loc]
	}
	return bp != nil && bp.Enabled
}

// Schedule implements actors.DeliveryInterceptor. Every message
// arriving at the wrapped actor runs through this decision, including
// messages re-released from the inbox. Messages tagged paused by a
// promise resolution are treated as breakpointed at the receiver.
func (d *Actor) Schedule(msg *actors.EventualMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if msg.IsPaused() && d.debuggingState == StateRunning {
		d.pauseAndBuffer(msg, StateBreakpoint)
		d.notifyBreakpointHit(msg)
		return nil
	}
	return d.schedule(msg, ReceiverSide)
}

// SendTo routes an outgoing message of this actor to its target,
// consulting the sender-side breakpoints first. A match installs a
// future breakpoint bound to the message's eventual resolution, so the
// pause fires later, at resolution time; the sender's own scheduling
// state is never touched.
func (d *Actor) SendTo(msg *actors.EventualMessage) error {
	if msg == nil {
		return actors.ErrNilMessage
	}

	d.mu.Lock()
	if d.isBreakpointed(msg.CallSite, SenderSide) {
		d.installFutureBreakpoint(msg)
	}
	d.mu.Unlock()

	return msg.Target.Send(msg)
}

// schedule is the delivery decision path. Caller holds d.mu.
func (d *Actor) schedule(msg *actors.EventualMessage, side Side) error {
	if d.debuggingState == StateInitial {
		// Pre-start buffering; the debugging state is unchanged.
		d.pauseAndBuffer(msg, StateInitial)
		return nil
	}

	if d.debuggingState == StatePaused {
		switch d.pausedState {
		case StateStepInto, StateStepOver:
			// Stepping authorizes exactly this delivery.
			d.logMailboxAdd(msg)
			return d.base.Enqueue(msg)
		case StateStepReturn:
			d.logMailboxAdd(msg)
			d.installFutureBreakpoint(msg)
			return d.base.Enqueue(msg)
		default:
			d.pauseAndBuffer(msg, d.pausedState)
			return nil
		}
	}

	// Running: check whether the call site is breakpointed.
	if d.isBreakpointed(msg.CallSite, side) {
		if side == SenderSide {
			// Pause at the sender is deferred to resolution time.
			d.installFutureBreakpoint(msg)
			return d.base.Enqueue(msg)
		}
		d.pauseAndBuffer(msg, StateBreakpoint)
		d.notifyBreakpointHit(msg)
		return nil
	}

	return d.base.Enqueue(msg)
}

// pauseAndBuffer appends the message to the inbox and marks the actor
// paused, unless it has not started yet. Caller holds d.mu.
func (d *Actor) pauseAndBuffer(msg *actors.EventualMessage, state State) {
	d.inbox = append(d.inbox, msg)
	if d.debuggingState != StateInitial {
		if d.debuggingState != StatePaused {
			d.notifyPaused()
		}
		d.debuggingState = StatePaused
	}
	d.pausedState = state
}

// installFutureBreakpoint binds a breakpoint to the message's eventual
// resolution by flagging its promise. Caller holds d.mu.
func (d *Actor) installFutureBreakpoint(msg *actors.EventualMessage) {
	if msg.Resolver == nil {
		return
	}
	p := msg.Resolver.Promise()
	p.SetHaltOnResolver(true)
	if d.session != nil {
		p.SetHaltHandler(d.session)
	}
}

// Leave implements actors.DeliveryInterceptor: called by the base
// actor when a turn completes. A step-over ends once the inbox is
// empty; a step-into ends unconditionally.
func (d *Actor) Leave(msg *actors.EventualMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pausedState == StateStepOver {
		d.pausedState = StateInitial
		if len(d.inbox) == 0 {
			d.debuggingState = StateRunning
			d.notifyResumed()
		}
		return
	}

	if d.pausedState == StateStepInto {
		d.pausedState = StateInitial
		d.debuggingState = StateRunning
		d.notifyResumed()
	}
}

// Pause suspends delivery: subsequent messages are buffered in the
// inbox until an explicit step or resume.
func (d *Actor) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.debuggingState = StatePaused
	d.pausedState = StateCommand
	d.notifyPaused()
}

// Resume returns a paused actor to Running and re-submits the buffered
// inbox messages through the delivery decision path, oldest first. A
// released message can itself hit a breakpoint again, which stops the
// drain with the remainder still buffered.
func (d *Actor) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.debuggingState != StatePaused {
		return
	}
	d.debuggingState = StateRunning
	d.pausedState = StateInitial
	d.notifyResumed()

	for d.debuggingState == StateRunning && len(d.inbox) > 0 {
		msg := d.inbox[0]
		d.inbox = d.inbox[1:]
		if err := d.schedule(msg, ReceiverSide); err != nil {
			log.Printf("debugger: actor %d: resume delivery: %v", d.base.ID(), err)
		}
	}
}

// StepInto releases one buffered message and returns to Running as
// soon as its turn completes.
func (d *Actor) StepInto() {
	d.stepCommand(StateStepInto)
}

// StepOver releases one buffered message and returns to Running once
// its turn completes with an empty inbox.
func (d *Actor) StepOver() {
	d.stepCommand(StateStepOver)
}

// StepReturn releases one buffered message with a future breakpoint
// bound to its resolution.
func (d *Actor) StepReturn() {
	d.stepCommand(StateStepReturn)
}

func (d *Actor) stepCommand(step State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.debuggingState == StatePaused {
		d.pausedState = step
	}
	d.scheduleOneMessageFromInbox()
}

// scheduleOneMessageFromInbox releases the oldest buffered message
// back through the delivery decision path. A message that is not
// breakpointed can still sit here because of an explicit pause
// command. Caller holds d.mu.
func (d *Actor) scheduleOneMessageFromInbox() {
	if len(d.inbox) == 0 {
		return
	}
	msg := d.inbox[0]
	d.inbox = d.inbox[1:]
	if err := d.schedule(msg, ReceiverSide); err != nil {
		log.Printf("debugger: actor %d: step delivery: %v", d.base.ID(), err)
	}
}

// logMailboxAdd records a delivery authorized while stepping. Caller
// holds d.mu.
func (d *Actor) logMailboxAdd(msg *actors.EventualMessage) {
	if d.session != nil {
		d.session.logMessageDelivered(d, msg)
	}
}

func (d *Actor) notifyBreakpointHit(msg *actors.EventualMessage) {
	if d.session != nil {
		d.session.publishBreakpointHit(d, msg)
	}
}

func (d *Actor) notifyPaused() {
	if d.session != nil {
		d.session.publishPaused(d)
	}
}

func (d *Actor) notifyResumed() {
	if d.session != nil {
		d.session.publishResumed(d)
	}
}

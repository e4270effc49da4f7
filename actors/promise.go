package actors

import (
	"log"
	"sync"
)

// Promise is the consumer half of a one-shot future. It is created
// paired 1:1 with exactly one Resolver; the pair shares a single
// resolution cell guarded by one mutex, so Resolve and AddDependent
// are linearizable against each other: a dependent message registered
// concurrently with resolution is delivered exactly once, never zero
// or twice.
//
// Resolving a promise with another promise chains the two: the outer
// promise enters the Chained state and is resolved later, with the
// same value and outcome, by the inner promise's resolution.
type Promise struct {
	mu    sync.Mutex
	state Resolution
	value Value

	// resolving is set while a Resolve call has claimed the cell but
	// not yet committed the value. A second Resolve in that window is
	// still a double resolution.
	resolving bool

	// dependents are pipelined messages awaiting the value.
	dependents []*EventualMessage

	// chained are promises that were resolved with this promise.
	chained []*Promise

	// Sticky debugger flags, settable before resolution, never cleared.
	haltOnResolver   bool
	haltOnResolution bool

	haltHandler HaltHandler
}

// Resolver is the producer half of a promise pair.
type Resolver struct {
	promise *Promise
}

// NewPromisePair returns a linked promise/resolver pair in the
// Unresolved state.
func NewPromisePair() (*Promise, *Resolver) {
	p := &Promise{state: Unresolved}
	return p, &Resolver{promise: p}
}

// Promise returns the promise fulfilled by this resolver.
func (r *Resolver) Promise() *Promise {
	return r.promise
}

// Resolve commits value and outcome to the paired promise and fans the
// resolution out to every registered dependent message and chained
// promise. The outcome must be Successful or Erroneous.
//
// The transition out of Unresolved happens exactly once; a second call
// fails with ErrPromiseAlreadyResolved and never overwrites the value.
//
// haltOnResolver and haltOnResolution are per-call overrides, OR-ed
// with the promise's sticky flags. When the effective halt-on-resolver
// flag is set and the value is not itself a promise, the registered
// halt handler is signaled before the value is committed. The
// effective halt-on-resolution flag tags every dependent message so
// the debugging layer treats the dependent turn as breakpointed at
// delivery time.
func (r *Resolver) Resolve(value Value, outcome Resolution, haltOnResolver, haltOnResolution bool) error {
	p := r.promise

	p.mu.Lock()
	if p.state != Unresolved || p.resolving {
		p.mu.Unlock()
		return ErrPromiseAlreadyResolved
	}

	// A promise resolved with another promise is chained, not halted:
	// the outer promise follows the inner one's resolution.
	if inner, ok := value.(*Promise); ok {
		p.state = Chained
		p.mu.Unlock()
		inner.chainTo(p)
		return nil
	}

	p.resolving = true
	effHaltResolver := haltOnResolver || p.haltOnResolver
	effHaltResolution := haltOnResolution || p.haltOnResolution
	handler := p.haltHandler
	p.mu.Unlock()

	// Breakpoint-hit notification goes out before the value commits.
	if effHaltResolver && handler != nil {
		handler.Halt(value)
	}

	p.commit(value, outcome, effHaltResolution)
	return nil
}

// AddDependent registers a pipelined message to be scheduled when the
// promise resolves. If the promise is already resolved the message is
// scheduled immediately with the stored value.
func (p *Promise) AddDependent(msg *EventualMessage) {
	p.mu.Lock()
	switch p.state {
	case Successful, Erroneous:
		value := p.value
		paused := p.haltOnResolution
		p.mu.Unlock()
		scheduleDependent(msg, value, paused)
	default:
		// Unresolved or Chained; an in-flight Resolve that has claimed
		// the cell but not committed will pick this dependent up.
		p.dependents = append(p.dependents, msg)
		p.mu.Unlock()
	}
}

// commit performs the single transition out of Unresolved and fans the
// value out. Dependent scheduling is the one write path allowed to
// mutate another actor's mailbox from outside that actor's own turn.
func (p *Promise) commit(value Value, outcome Resolution, haltOnResolution bool) {
	p.mu.Lock()
	p.state = outcome
	p.value = value
	p.resolving = false
	if haltOnResolution {
		p.haltOnResolution = true
	}
	dependents := p.dependents
	p.dependents = nil
	chained := p.chained
	p.chained = nil
	p.mu.Unlock()

	for _, msg := range dependents {
		scheduleDependent(msg, value, haltOnResolution)
	}
	for _, c := range chained {
		c.resolveFromChain(value, outcome)
	}
}

// chainTo registers outer to be resolved by this promise's resolution.
func (p *Promise) chainTo(outer *Promise) {
	p.mu.Lock()
	switch p.state {
	case Successful, Erroneous:
		value, outcome := p.value, p.state
		p.mu.Unlock()
		outer.resolveFromChain(value, outcome)
	default:
		p.chained = append(p.chained, outer)
		p.mu.Unlock()
	}
}

// resolveFromChain resolves a Chained promise with the inner promise's
// value and outcome, honoring the chained promise's own halt flags.
func (p *Promise) resolveFromChain(value Value, outcome Resolution) {
	p.mu.Lock()
	if p.state != Chained {
		p.mu.Unlock()
		return
	}
	halt := p.haltOnResolver
	haltResolution := p.haltOnResolution
	handler := p.haltHandler
	p.mu.Unlock()

	if halt && handler != nil {
		handler.Halt(value)
	}
	p.commit(value, outcome, haltResolution)
}

// scheduleDependent binds the resolved value to a pipelined message
// and delivers it to its target actor.
func scheduleDependent(msg *EventualMessage, value Value, paused bool) {
	if msg.Receiver == nil {
		msg.Receiver = value
	}
	msg.paused = paused
	if msg.Target == nil {
		return
	}
	if err := msg.Target.Send(msg); err != nil {
		log.Printf("dropping dependent %v: %v", msg, err)
	}
}

// State returns a snapshot of the resolution state.
func (p *Promise) State() Resolution {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Value returns the resolved value together with the resolution state.
// The value is only meaningful once the state is Successful or
// Erroneous.
func (p *Promise) Value() (Value, Resolution) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.state
}

// SetHaltOnResolver sets the sticky halt-on-resolver flag.
func (p *Promise) SetHaltOnResolver(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if on {
		p.haltOnResolver = true
	}
}

// SetHaltOnResolution sets the sticky halt-on-resolution flag.
func (p *Promise) SetHaltOnResolution(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if on {
		p.haltOnResolution = true
	}
}

// HaltOnResolver reports the sticky halt-on-resolver flag.
func (p *Promise) HaltOnResolver() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.haltOnResolver
}

// HaltOnResolution reports the sticky halt-on-resolution flag.
func (p *Promise) HaltOnResolution() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.haltOnResolution
}

// SetHaltHandler registers the debugging layer's halt notification
// sink for this promise.
func (p *Promise) SetHaltHandler(h HaltHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.haltHandler = h
}

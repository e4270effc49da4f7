package actors

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Actor is the base execution unit: a strictly serialized mailbox of
// EventualMessages drained one turn at a time on the system's shared
// worker pool.
//
// Exclusivity is an explicit invariant, not an accident of the
// scheduler: the executing flag guarantees at most one in-flight turn
// per actor, while any number of actors run their turns in parallel.
// Suspension happens only at turn boundaries, so the interpreter
// collaborator has uncontended access to the actor's private state for
// the whole duration of one message's execution.
type Actor struct {
	id   ActorID
	name string

	pool   *Pool
	interp Interpreter

	mu        sync.Mutex
	mailbox   []*EventualMessage
	executing bool
	stopped   bool

	// interceptor, when set, owns the delivery decision for incoming
	// messages and observes turn completion. Installed by the
	// debugging layer before the actor starts receiving messages.
	interceptor DeliveryInterceptor

	// Atomic counters for statistics
	state         int32 // ActorState
	turnsExecuted uint64
	lastTurnAt    int64 // Unix nano
	sendSeq       uint64

	createdAt time.Time
}

func newActor(id ActorID, name string, pool *Pool, interp Interpreter, mailboxCapacity int) *Actor {
	return &Actor{
		id:        id,
		name:      name,
		pool:      pool,
		interp:    interp,
		mailbox:   make([]*EventualMessage, 0, mailboxCapacity),
		createdAt: time.Now(),
	}
}

// ID returns the unique identifier of this Actor.
func (a *Actor) ID() ActorID {
	return a.id
}

// Name returns the human-readable name of this Actor.
func (a *Actor) Name() string {
	return a.name
}

// SetInterceptor installs a delivery interceptor. It must be called
// before the actor starts receiving messages.
func (a *Actor) SetInterceptor(i DeliveryInterceptor) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.interceptor = i
}

// Send delivers a message to this actor. With an interceptor
// installed the delivery decision is delegated to it; otherwise the
// message is appended to the tail of the mailbox and, if the actor is
// idle, a turn is scheduled on the pool.
//
// Sending to a stopped actor fails with ErrActorStopped.
func (a *Actor) Send(msg *EventualMessage) error {
	if msg == nil {
		return ErrNilMessage
	}

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return ErrActorStopped
	}
	interceptor := a.interceptor
	a.mu.Unlock()

	if interceptor != nil {
		return interceptor.Schedule(msg)
	}
	return a.Enqueue(msg)
}

// Enqueue appends a message to the tail of the mailbox, bypassing any
// interceptor, and wakes the actor's execution if it is idle. The
// debugging layer uses it to deliver messages it has decided to
// release.
func (a *Actor) Enqueue(msg *EventualMessage) error {
	if msg == nil {
		return ErrNilMessage
	}

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return ErrActorStopped
	}
	a.mailbox = append(a.mailbox, msg)
	wake := !a.executing
	if wake {
		a.executing = true
	}
	a.mu.Unlock()

	if wake {
		a.pool.Submit(a.executeAllMessages)
	}
	return nil
}

// takeNext dequeues the head of the mailbox. An empty mailbox clears
// the executing flag and yields the pool worker; the next Enqueue
// schedules a fresh run. Send and takeNext are the only two mutation
// points of the mailbox.
func (a *Actor) takeNext() *EventualMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.mailbox) == 0 || a.stopped {
		a.executing = false
		return nil
	}
	msg := a.mailbox[0]
	a.mailbox = a.mailbox[1:]
	return msg
}

// executeAllMessages is the task submitted to the shared pool. It
// drains the mailbox one turn at a time until empty.
func (a *Actor) executeAllMessages() {
	for {
		msg := a.takeNext()
		if msg == nil {
			return
		}
		a.executeTurn(msg)
	}
}

// executeTurn runs one complete turn: invoke the interpreter with the
// message's receiver, selector and arguments, then fulfill the
// message's resolver with the result or the failure outcome. A failing
// turn never aborts the actor; it proceeds to the next queued message.
func (a *Actor) executeTurn(msg *EventualMessage) {
	atomic.StoreInt32(&a.state, int32(ActorStateExecuting))

	result, err := a.interp.Invoke(msg.Receiver, msg.Selector, msg.Args)

	if msg.Resolver != nil {
		var rerr error
		if err != nil {
			rerr = msg.Resolver.Resolve(err, Erroneous, false, false)
		} else {
			rerr = msg.Resolver.Resolve(result, Successful, false, false)
		}
		if rerr != nil {
			// Double resolution is a protocol violation by whoever
			// resolved the promise out from under the turn.
			logTurnError(a, msg, rerr)
		}
	} else if err != nil {
		logTurnError(a, msg, err)
	}

	atomic.AddUint64(&a.turnsExecuted, 1)
	atomic.StoreInt64(&a.lastTurnAt, time.Now().UnixNano())
	atomic.StoreInt32(&a.state, int32(ActorStateIdle))

	a.mu.Lock()
	interceptor := a.interceptor
	a.mu.Unlock()
	if interceptor != nil {
		interceptor.Leave(msg)
	}
}

// Stop tears down the mailbox. Pending messages are discarded and any
// later Send fails with ErrActorStopped.
func (a *Actor) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return ErrActorStopped
	}
	a.stopped = true
	a.mailbox = nil
	atomic.StoreInt32(&a.state, int32(ActorStateStopped))
	return nil
}

// Stats returns current runtime statistics for this Actor.
func (a *Actor) Stats() ActorStats {
	a.mu.Lock()
	mailboxLen := len(a.mailbox)
	a.mu.Unlock()

	var lastTurnAt time.Time
	if ns := atomic.LoadInt64(&a.lastTurnAt); ns > 0 {
		lastTurnAt = time.Unix(0, ns)
	}

	return ActorStats{
		ID:            a.id,
		Name:          a.name,
		State:         ActorState(atomic.LoadInt32(&a.state)),
		TurnsExecuted: atomic.LoadUint64(&a.turnsExecuted),
		MailboxLen:    mailboxLen,
		CreatedAt:     a.createdAt,
		LastTurnAt:    lastTurnAt,
	}
}

// MailboxLen returns the number of queued-but-unexecuted messages.
func (a *Actor) MailboxLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.mailbox)
}

func logTurnError(a *Actor, msg *EventualMessage, err error) {
	log.Printf("actor %d (%s): turn %v: %v", a.id, a.name, msg, err)
}

// nextSendSeq draws the next per-sender sequence number.
func (a *Actor) nextSendSeq() uint64 {
	return atomic.AddUint64(&a.sendSeq, 1)
}

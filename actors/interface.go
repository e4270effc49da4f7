package actors

// Interpreter executes one method body to completion, synchronously,
// within the calling turn. It is the core's single seam to the
// language implementation; the core guarantees the receiver's actor
// state is uncontended for the whole invocation.
type Interpreter interface {
	// Invoke dispatches selector on receiver with the given arguments.
	// A returned error is a turn-execution failure: it is recorded on
	// the message's resolver, never propagated to the actor loop.
	Invoke(receiver Value, selector string, args []Value) (Value, error)
}

// DeliveryInterceptor filters message delivery for an actor and
// observes its turn boundaries. The debugging layer installs one to
// buffer, release, or single-step messages without breaking the
// actor's exclusivity guarantees.
type DeliveryInterceptor interface {
	// Schedule decides what happens to an incoming message: enqueue it
	// on the actor's mailbox, or buffer it away from delivery. It is
	// called instead of a direct mailbox append.
	Schedule(msg *EventualMessage) error

	// Leave is called by the actor after each completed turn, with the
	// message that just finished executing.
	Leave(msg *EventualMessage)
}

// HaltHandler receives breakpoint-hit notifications raised by promise
// resolution when a halt-on-resolver flag is set.
type HaltHandler interface {
	Halt(value Value)
}

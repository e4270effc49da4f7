package actors

import (
	"fmt"

	"github.com/lerencao/SOMns/source"
)

// EventualMessage is the envelope of one asynchronous send: the target
// actor, the receiver value the selector is dispatched on, the
// selector and its arguments, the optional resolver to fulfill with
// the send's result, and the source location of the call site.
//
// A message is immutable once handed to the target's mailbox; after
// enqueue only the target actor's scheduler touches it until it is
// executed and discarded. The one exception is a pipelined message
// registered on an unresolved promise, whose receiver is bound at
// resolution time, before scheduling.
type EventualMessage struct {
	// Target is the actor whose mailbox receives the message.
	Target *Actor

	// Receiver is the value the selector is dispatched on. It is nil
	// for pipelined messages until the awaited promise resolves.
	Receiver Value

	// Selector names the operation to perform.
	Selector string

	// Args are the ordered, fixed-arity arguments of the send.
	Args []Value

	// Sender is the actor whose turn created the message, nil for
	// sends originating outside any turn.
	Sender *Actor

	// Resolver, when non-nil, is fulfilled with the outcome of the
	// message's turn.
	Resolver *Resolver

	// CallSite is the source location of the send, used for
	// breakpoint matching.
	CallSite source.Location

	// SendSeq is a per-sender sequence number, assigned at creation.
	SendSeq uint64

	// paused marks a message whose delivery must be treated as
	// breakpointed at the receiver. Set when a promise resolves with
	// an effective halt-on-resolution flag.
	paused bool
}

// NewEventualMessage creates a message envelope. The sequence number
// is drawn from the sender when one is given.
func NewEventualMessage(target *Actor, receiver Value, selector string,
	args []Value, sender *Actor, resolver *Resolver,
	callSite source.Location) *EventualMessage {

	msg := &EventualMessage{
		Target:   target,
		Receiver: receiver,
		Selector: selector,
		Args:     args,
		Sender:   sender,
		Resolver: resolver,
		CallSite: callSite,
	}
	if sender != nil {
		msg.SendSeq = sender.nextSendSeq()
	}
	return msg
}

// IsPaused reports whether the message is tagged as breakpointed for
// delivery.
func (m *EventualMessage) IsPaused() bool {
	return m.paused
}

// String returns a short description for logs.
func (m *EventualMessage) String() string {
	target := ActorID(0)
	if m.Target != nil {
		target = m.Target.ID()
	}
	return fmt.Sprintf("message{selector=%s target=%d seq=%d}", m.Selector, target, m.SendSeq)
}

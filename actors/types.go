package actors

import (
	"time"
)

// ActorID represents a unique identifier for an Actor.
type ActorID uint32

// Value is a runtime-level value as seen by the execution core. The
// interpreter collaborator owns the concrete representations.
type Value interface{}

// Resolution represents the state of a promise's resolution cell.
type Resolution uint8

const (
	// Unresolved means the promise has not been resolved yet
	Unresolved Resolution = iota

	// Successful means the promise was resolved with a normal value
	Successful

	// Erroneous means the promise was resolved with a failure outcome
	Erroneous

	// Chained means the promise was resolved with another promise and
	// now follows that promise's resolution
	Chained
)

// String returns the string representation of Resolution.
func (r Resolution) String() string {
	switch r {
	case Unresolved:
		return "unresolved"
	case Successful:
		return "successful"
	case Erroneous:
		return "erroneous"
	case Chained:
		return "chained"
	default:
		return "unknown"
	}
}

// ActorState represents the current execution state of an Actor.
type ActorState uint8

const (
	// ActorStateIdle means the actor has no turn in flight
	ActorStateIdle ActorState = iota

	// ActorStateExecuting means the actor is processing a turn
	ActorStateExecuting

	// ActorStateStopped means the actor's mailbox has been torn down
	ActorStateStopped
)

// String returns the string representation of ActorState.
func (s ActorState) String() string {
	switch s {
	case ActorStateIdle:
		return "idle"
	case ActorStateExecuting:
		return "executing"
	case ActorStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ActorStats contains runtime statistics for an Actor.
type ActorStats struct {
	// ID of the Actor
	ID ActorID

	// Name of the Actor
	Name string

	// Current execution state
	State ActorState

	// Total turns executed
	TurnsExecuted uint64

	// Messages currently in the mailbox
	MailboxLen int

	// Time when the Actor was created
	CreatedAt time.Time

	// Time the last turn completed
	LastTurnAt time.Time
}

// SystemOptions contains configuration options for an actor System.
type SystemOptions struct {
	// PoolWorkers sets the number of workers in the shared execution
	// pool. Zero selects a default based on the number of CPUs.
	PoolWorkers int

	// MailboxCapacity is the initial capacity of each actor's mailbox.
	MailboxCapacity int
}

// DefaultSystemOptions returns sensible default options.
func DefaultSystemOptions() SystemOptions {
	return SystemOptions{
		PoolWorkers:     0,
		MailboxCapacity: 16,
	}
}

// Package actors provides error definitions for the execution core
package actors

import "errors"

// Protocol violation errors. These are programmer errors, surfaced
// immediately to the caller and never retried.
var (
	ErrPromiseAlreadyResolved = errors.New("promise already resolved")
	ErrActorStopped           = errors.New("actor is stopped")
	ErrNilMessage             = errors.New("cannot deliver nil message")
	ErrActorNotFound          = errors.New("actor not found")
	ErrSystemShutdown         = errors.New("actor system is shutting down")
)

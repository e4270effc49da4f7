package actors

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// System manages the lifecycle of all actors sharing one worker pool.
type System struct {
	pool *Pool

	// Map of Actor ID to Actor instance
	actors sync.Map // map[ActorID]*Actor

	// Counter for generating unique Actor IDs
	idCounter uint32

	opts SystemOptions

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSystem creates a new actor System.
func NewSystem(opts SystemOptions) *System {
	if opts.MailboxCapacity <= 0 {
		opts.MailboxCapacity = DefaultSystemOptions().MailboxCapacity
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &System{
		pool:   NewPool(opts.PoolWorkers),
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
}

// NewActor creates and registers a new actor driven by the given
// interpreter.
func (s *System) NewActor(name string, interp Interpreter) (*Actor, error) {
	select {
	case <-s.ctx.Done():
		return nil, ErrSystemShutdown
	default:
	}

	if interp == nil {
		return nil, fmt.Errorf("actor %q: nil interpreter", name)
	}

	id := ActorID(atomic.AddUint32(&s.idCounter, 1))
	actor := newActor(id, name, s.pool, interp, s.opts.MailboxCapacity)

	if _, exists := s.actors.LoadOrStore(id, actor); exists {
		return nil, fmt.Errorf("actor with ID %d already registered", id)
	}
	return actor, nil
}

// Lookup finds an actor by its ID.
func (s *System) Lookup(id ActorID) (*Actor, bool) {
	if actor, exists := s.actors.Load(id); exists {
		return actor.(*Actor), true
	}
	return nil, false
}

// StopActor tears down one actor and removes it from the registry.
func (s *System) StopActor(id ActorID) error {
	actor, exists := s.actors.LoadAndDelete(id)
	if !exists {
		return ErrActorNotFound
	}
	return actor.(*Actor).Stop()
}

// List returns all registered actor IDs.
func (s *System) List() []ActorID {
	var ids []ActorID
	s.actors.Range(func(key, value interface{}) bool {
		ids = append(ids, key.(ActorID))
		return true
	})
	return ids
}

// Stats returns statistics for all actors.
func (s *System) Stats() []ActorStats {
	var stats []ActorStats
	s.actors.Range(func(key, value interface{}) bool {
		stats = append(stats, value.(*Actor).Stats())
		return true
	})
	return stats
}

// Shutdown stops all actors and waits for the pool to drain, or until
// the context expires.
func (s *System) Shutdown(ctx context.Context) error {
	s.cancel()

	s.actors.Range(func(key, value interface{}) bool {
		value.(*Actor).Stop()
		s.actors.Delete(key)
		return true
	})

	done := make(chan struct{})
	go func() {
		s.pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package debugger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerencao/SOMns/actors"
	"github.com/lerencao/SOMns/source"
)

// countingInterpreter counts executed turns per selector.
type countingInterpreter struct {
	mu    sync.Mutex
	turns map[string]int
	total uint64
}

func newCountingInterpreter() *countingInterpreter {
	return &countingInterpreter{turns: make(map[string]int)}
}

func (c *countingInterpreter) Invoke(receiver actors.Value, selector string, args []actors.Value) (actors.Value, error) {
	c.mu.Lock()
	c.turns[selector]++
	c.mu.Unlock()
	atomic.AddUint64(&c.total, 1)
	return selector, nil
}

func (c *countingInterpreter) count(selector string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turns[selector]
}

func (c *countingInterpreter) totalTurns() uint64 {
	return atomic.LoadUint64(&c.total)
}

type fixture struct {
	system  *actors.System
	session *Session
	interp  *countingInterpreter
	actor   *Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	system := actors.NewSystem(actors.DefaultSystemOptions())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		system.Shutdown(ctx)
	})

	session := NewSession()
	interp := newCountingInterpreter()
	base, err := system.NewActor("debuggee", interp)
	require.NoError(t, err)

	return &fixture{
		system:  system,
		session: session,
		interp:  interp,
		actor:   session.Attach(base),
	}
}

func locA() source.Location {
	return source.Location{Origin: "file:/demo/Ping.ns", StartLine: 12, StartColumn: 5, CharIndex: 230}
}

func locB() source.Location {
	return source.Location{Origin: "file:/demo/Pong.ns", StartLine: 40, StartColumn: 9, CharIndex: 881}
}

func (f *fixture) message(selector string, callSite source.Location, resolver *actors.Resolver) *actors.EventualMessage {
	return actors.NewEventualMessage(f.actor.Base(), nil, selector, nil, nil, resolver, callSite)
}

func TestInitialBuffersWithoutStateChange(t *testing.T) {
	f := newFixture(t)

	// Not started: everything is initialization buffering.
	require.NoError(t, f.actor.Base().Send(f.message("m1", locA(), nil)))

	debugging, paused := f.actor.States()
	assert.Equal(t, StateInitial, debugging)
	assert.Equal(t, StateInitial, paused)
	assert.Equal(t, 1, f.actor.InboxLen())
	assert.False(t, f.actor.IsStarted())
	assert.Zero(t, f.interp.totalTurns())

	// Debugger attaches: Running. The buffered message stays put.
	f.actor.Start()
	assert.True(t, f.actor.IsStarted())
	assert.Equal(t, 1, f.actor.InboxLen())

	// A fresh breakpoint-free message executes immediately while m1
	// remains buffered.
	require.NoError(t, f.actor.Base().Send(f.message("m2", locB(), nil)))
	require.Eventually(t, func() bool {
		return f.interp.count("m2") == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, f.actor.InboxLen())
	assert.Zero(t, f.interp.count("m1"))

	// An explicit step command drains m1.
	f.actor.StepInto()
	require.Eventually(t, func() bool {
		return f.interp.count("m1") == 1
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, f.actor.InboxLen())
}

func TestReceiverBreakpointPausesActor(t *testing.T) {
	f := newFixture(t)
	f.actor.Start()
	f.actor.AddBreakpoint(NewBreakpoint(locA()), ReceiverSide)

	require.NoError(t, f.actor.Base().Send(f.message("hit", locA(), nil)))

	assert.True(t, f.actor.IsPaused())
	assert.True(t, f.actor.IsPausedByBreakpoint())
	assert.Equal(t, 1, f.actor.InboxLen())
	assert.Zero(t, f.actor.Base().MailboxLen(), "message landed in inbox, not mailbox")
	assert.Zero(t, f.interp.count("hit"))

	// StepInto releases the message; Running again once the turn ends.
	f.actor.StepInto()
	require.Eventually(t, func() bool {
		return f.interp.count("hit") == 1
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		debugging, paused := f.actor.States()
		return debugging == StateRunning && paused == StateInitial
	}, time.Second, 5*time.Millisecond)
}

func TestDisabledBreakpointDoesNotMatch(t *testing.T) {
	f := newFixture(t)
	f.actor.Start()
	bp := NewBreakpoint(locA())
	bp.Enabled = false
	f.actor.AddBreakpoint(bp, ReceiverSide)

	require.NoError(t, f.actor.Base().Send(f.message("pass", locA(), nil)))
	require.Eventually(t, func() bool {
		return f.interp.count("pass") == 1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, f.actor.IsPaused())
}

func TestStepOverReleasesExactlyOne(t *testing.T) {
	f := newFixture(t)
	f.actor.Start()
	f.actor.AddBreakpoint(NewBreakpoint(locA()), ReceiverSide)

	// First message pauses the actor; the next two pile up behind it.
	require.NoError(t, f.actor.Base().Send(f.message("first", locA(), nil)))
	require.NoError(t, f.actor.Base().Send(f.message("second", locB(), nil)))
	require.NoError(t, f.actor.Base().Send(f.message("third", locB(), nil)))
	require.True(t, f.actor.IsPaused())
	require.Equal(t, 3, f.actor.InboxLen())

	// Step over: exactly one message released; inbox not empty when
	// the turn completes, so the actor stays paused.
	f.actor.StepOver()
	require.Eventually(t, func() bool {
		return f.interp.count("first") == 1
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, paused := f.actor.States()
		return paused == StateInitial
	}, time.Second, 5*time.Millisecond)
	assert.True(t, f.actor.IsPaused())
	assert.Equal(t, 2, f.actor.InboxLen())
	assert.Zero(t, f.interp.count("second"))

	// Two more step-overs drain the rest; the last one completing with
	// an empty inbox returns the actor to Running.
	f.actor.StepOver()
	require.Eventually(t, func() bool {
		return f.interp.count("second") == 1
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, paused := f.actor.States()
		return paused == StateInitial
	}, time.Second, 5*time.Millisecond)
	f.actor.StepOver()
	require.Eventually(t, func() bool {
		return f.interp.count("third") == 1
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		debugging, _ := f.actor.States()
		return debugging == StateRunning
	}, time.Second, 5*time.Millisecond)
}

func TestPauseBuffersAndResumeDrains(t *testing.T) {
	f := newFixture(t)
	f.actor.Start()

	f.actor.Pause()
	assert.True(t, f.actor.IsPaused())
	debugging, paused := f.actor.States()
	assert.Equal(t, StatePaused, debugging)
	assert.Equal(t, StateCommand, paused)

	require.NoError(t, f.actor.Base().Send(f.message("deferred1", locA(), nil)))
	require.NoError(t, f.actor.Base().Send(f.message("deferred2", locB(), nil)))
	assert.Equal(t, 2, f.actor.InboxLen())
	assert.Zero(t, f.interp.totalTurns())

	// Buffering is a scheduling deferral, never a failure: resume
	// delivers every buffered message.
	f.actor.Resume()
	require.Eventually(t, func() bool {
		return f.interp.totalTurns() == 2
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, f.actor.InboxLen())
	assert.False(t, f.actor.IsPaused())
}

func TestResumeStopsAtNextBreakpoint(t *testing.T) {
	f := newFixture(t)
	f.actor.Start()
	f.actor.AddBreakpoint(NewBreakpoint(locB()), ReceiverSide)

	f.actor.Pause()
	require.NoError(t, f.actor.Base().Send(f.message("plain", locA(), nil)))
	require.NoError(t, f.actor.Base().Send(f.message("trap", locB(), nil)))

	// The released head can itself hit a breakpoint: the drain stops
	// there with the matching message re-buffered.
	f.actor.Resume()
	require.Eventually(t, func() bool {
		return f.interp.count("plain") == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, f.actor.IsPaused())
	assert.True(t, f.actor.IsPausedByBreakpoint())
	assert.Equal(t, 1, f.actor.InboxLen())
	assert.Zero(t, f.interp.count("trap"))
}

func TestResumeInvalidWhenNotPaused(t *testing.T) {
	f := newFixture(t)

	// Resume in Initial is a no-op; the actor still has to be started.
	f.actor.Resume()
	assert.False(t, f.actor.IsStarted())

	f.actor.Start()
	f.actor.Resume()
	debugging, _ := f.actor.States()
	assert.Equal(t, StateRunning, debugging)
}

func TestSenderBreakpointDefersPauseToResolution(t *testing.T) {
	system := actors.NewSystem(actors.DefaultSystemOptions())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		system.Shutdown(ctx)
	})
	session := NewSession()

	interpB := newCountingInterpreter()
	interpC := newCountingInterpreter()
	baseB, err := system.NewActor("b", interpB)
	require.NoError(t, err)
	baseC, err := system.NewActor("c", interpC)
	require.NoError(t, err)

	b := session.Attach(baseB)
	c := session.Attach(baseC)
	b.Start()
	c.Start()

	b.AddBreakpoint(NewBreakpoint(locA()), SenderSide)

	promise, resolver := actors.NewPromisePair()
	msg := actors.NewEventualMessage(baseC, nil, "work", nil, baseB, resolver, locA())
	require.NoError(t, b.SendTo(msg))

	// The sender's own scheduling state is unaffected.
	debugging, paused := b.States()
	assert.Equal(t, StateRunning, debugging)
	assert.Equal(t, StateInitial, paused)
	assert.Zero(t, b.InboxLen())

	// The message executes normally at the receiver; the pause is
	// deferred to resolution time via the promise's halt flag.
	require.Eventually(t, func() bool {
		return interpC.count("work") == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, promise.HaltOnResolver())

	require.Eventually(t, func() bool {
		return promise.State() == actors.Successful
	}, time.Second, 5*time.Millisecond)

	// The halt surfaced on the session's event stream.
	requireEvent(t, session, EventPromiseHalt)
}

func TestPausedTaggedMessagePausesReceiver(t *testing.T) {
	f := newFixture(t)
	f.actor.Start()

	promise, resolver := actors.NewPromisePair()
	promise.SetHaltOnResolution(true)
	promise.AddDependent(f.message("dependent", locB(), nil))

	require.NoError(t, resolver.Resolve("v", actors.Successful, false, false))

	// The dependent arrives tagged and is treated as breakpointed.
	require.Eventually(t, func() bool {
		return f.actor.IsPausedByBreakpoint()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, f.actor.InboxLen())
	assert.Zero(t, f.interp.count("dependent"))

	f.actor.StepInto()
	require.Eventually(t, func() bool {
		return f.interp.count("dependent") == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStepReturnInstallsFutureBreakpoint(t *testing.T) {
	f := newFixture(t)
	f.actor.Start()
	f.actor.Pause()

	promise, resolver := actors.NewPromisePair()
	msg := f.message("stepped", locA(), resolver)
	require.NoError(t, f.actor.Base().Send(msg))
	require.Equal(t, 1, f.actor.InboxLen())

	// Step-return releases the message with a future breakpoint bound
	// to its resolution.
	f.actor.StepReturn()
	require.Eventually(t, func() bool {
		return f.interp.count("stepped") == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, promise.HaltOnResolver())
	require.Eventually(t, func() bool {
		return promise.State() == actors.Successful
	}, time.Second, 5*time.Millisecond)
}

func TestBreakpointRemoval(t *testing.T) {
	f := newFixture(t)
	f.actor.Start()
	f.actor.AddBreakpoint(NewBreakpoint(locA()), ReceiverSide)
	f.actor.RemoveBreakpoint(locA(), ReceiverSide)

	require.NoError(t, f.actor.Base().Send(f.message("free", locA(), nil)))
	require.Eventually(t, func() bool {
		return f.interp.count("free") == 1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, f.actor.IsPaused())
}

// requireEvent waits for an event of the given type on the session
// stream.
func requireEvent(t *testing.T, session *Session, eventType string) Event {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case e := <-session.Events():
			if e.Type == eventType {
				return e
			}
		case <-deadline:
			t.Fatalf("no %s event observed", eventType)
			return Event{}
		}
	}
}

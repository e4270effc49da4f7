package debugger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/net/websocket"
)

func TestDispatchRoutesCommands(t *testing.T) {
	f := newFixture(t)
	frontend := NewFrontend(f.session, "127.0.0.1:0")
	id := uint32(f.actor.ID())

	frontend.Dispatch(Command{Action: ActionAttach, Actor: id})
	assert.True(t, f.actor.IsStarted())

	frontend.Dispatch(Command{Action: ActionPause, Actor: id})
	assert.True(t, f.actor.IsPaused())

	spec := SpecOf(locA())
	frontend.Dispatch(Command{Action: ActionAddBreakpoint, Actor: id, Location: spec, Side: "receiver"})
	frontend.Dispatch(Command{Action: ActionResume, Actor: id})
	assert.False(t, f.actor.IsPaused())

	require.NoError(t, f.actor.Base().Send(f.message("trap", locA(), nil)))
	assert.True(t, f.actor.IsPausedByBreakpoint())

	frontend.Dispatch(Command{Action: ActionStepInto, Actor: id})
	require.Eventually(t, func() bool {
		return f.interp.count("trap") == 1
	}, time.Second, 5*time.Millisecond)

	frontend.Dispatch(Command{Action: ActionRemoveBreakpoint, Actor: id, Location: spec, Side: "receiver"})
	require.NoError(t, f.actor.Base().Send(f.message("free", locA(), nil)))
	require.Eventually(t, func() bool {
		return f.interp.count("free") == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDispatchUnknownActor(t *testing.T) {
	f := newFixture(t)
	frontend := NewFrontend(f.session, "127.0.0.1:0")

	// Must not panic, must not disturb existing actors.
	frontend.Dispatch(Command{Action: ActionPause, Actor: 424242})
	assert.False(t, f.actor.IsPaused())
}

func TestFrontendWebSocketRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.actor.Start()

	frontend := NewFrontend(f.session, "127.0.0.1:0")
	require.NoError(t, frontend.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		frontend.Shutdown(ctx)
	})

	url := fmt.Sprintf("ws://%s/debugger", frontend.Addr())
	ws, err := websocket.Dial(url, "", "http://localhost/")
	require.NoError(t, err)
	defer ws.Close()

	// A pause command over the wire pauses the actor and the resulting
	// event comes back on the same connection.
	cmd := Command{Action: ActionPause, Actor: uint32(f.actor.ID())}
	require.NoError(t, websocket.JSON.Send(ws, cmd))

	require.Eventually(t, func() bool {
		return f.actor.IsPaused()
	}, time.Second, 5*time.Millisecond)

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var e Event
	require.NoError(t, websocket.JSON.Receive(ws, &e))
	assert.Equal(t, EventActorPaused, e.Type)
	assert.Equal(t, uint32(f.actor.ID()), e.Actor)
}

func TestFrontendBadAddress(t *testing.T) {
	f := newFixture(t)
	frontend := NewFrontend(f.session, "256.256.256.256:0")
	assert.Error(t, frontend.Start())
}

package debugger

import (
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/lerencao/SOMns/actors"
)

// Frontend exposes a Session to debugger clients over WebSocket.
// Clients send Commands and receive the session's Event stream; all
// traffic is JSON.
type Frontend struct {
	session *Session
	addr    string

	srv  *http.Server
	ln   net.Listener
	done chan struct{}

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewFrontend creates a front-end server for the session, listening on
// addr once started.
func NewFrontend(session *Session, addr string) *Frontend {
	return &Frontend{
		session: session,
		addr:    addr,
		done:    make(chan struct{}),
		conns:   make(map[*websocket.Conn]bool),
	}
}

// Start begins serving. The listener is bound synchronously so a bad
// address fails here, not later.
func (f *Frontend) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/debugger", websocket.Handler(f.handleConn))
	f.srv = &http.Server{Addr: f.addr, Handler: mux}

	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		return err
	}
	f.ln = ln

	go func() {
		if err := f.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("debugger frontend: %v", err)
		}
	}()
	go f.broadcastLoop()

	return nil
}

// Addr returns the bound listen address, valid after Start.
func (f *Frontend) Addr() string {
	if f.ln == nil {
		return f.addr
	}
	return f.ln.Addr().String()
}

// Shutdown stops the server and the event broadcast.
func (f *Frontend) Shutdown(ctx context.Context) error {
	close(f.done)
	if f.srv == nil {
		return nil
	}
	return f.srv.Shutdown(ctx)
}

// broadcastLoop fans session events out to every connected client.
func (f *Frontend) broadcastLoop() {
	for {
		select {
		case <-f.done:
			return
		case e := <-f.session.Events():
			f.mu.Lock()
			for ws := range f.conns {
				if err := websocket.JSON.Send(ws, e); err != nil {
					log.Printf("debugger frontend: send: %v", err)
				}
			}
			f.mu.Unlock()
		}
	}
}

func (f *Frontend) handleConn(ws *websocket.Conn) {
	f.mu.Lock()
	f.conns[ws] = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.conns, ws)
		f.mu.Unlock()
		ws.Close()
	}()

	for {
		var cmd Command
		err := websocket.JSON.Receive(ws, &cmd)
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Printf("debugger frontend: receive: %v", err)
			return
		}
		f.Dispatch(cmd)
	}
}

// Dispatch applies one front-end command to the session.
func (f *Frontend) Dispatch(cmd Command) {
	d, ok := f.session.Actor(actors.ActorID(cmd.Actor))
	if !ok {
		log.Printf("debugger frontend: %s: no actor %d", cmd.Action, cmd.Actor)
		return
	}

	switch cmd.Action {
	case ActionAttach:
		d.Start()
	case ActionPause:
		d.Pause()
	case ActionResume:
		d.Resume()
	case ActionStepInto:
		d.StepInto()
	case ActionStepOver:
		d.StepOver()
	case ActionStepReturn:
		d.StepReturn()
	case ActionAddBreakpoint:
		if cmd.Location != nil {
			d.AddBreakpoint(NewBreakpoint(cmd.Location.Location()), ParseSide(cmd.Side))
		}
	case ActionRemoveBreakpoint:
		if cmd.Location != nil {
			d.RemoveBreakpoint(cmd.Location.Location(), ParseSide(cmd.Side))
		}
	default:
		log.Printf("debugger frontend: unknown action %q", cmd.Action)
	}
}

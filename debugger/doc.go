// Package debugger implements message-level debugging for the actor
// core: per-actor pause/step state machines with breakpoint matching
// on call-site source locations, a session that owns the system-wide
// debugging state, and a WebSocket front end for debugger clients.
package debugger

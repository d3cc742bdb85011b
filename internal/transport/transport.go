// Package transport defines the boundary the dispatcher speaks to the
// realtime layer through: connection groups, unicast and group broadcast.
// The production implementation is the websocket hub in transport/ws.
package transport

import "github.com/netznav/navigator/internal/protocol"

// ConnID identifies a live transport connection. Player ids are derived
// from it, so it is stable for the connection's lifetime and never reused.
type ConnID string

// Transport is the pub/sub surface consumed by the event dispatcher
type Transport interface {
	// Join adds a connection to a broadcast group
	Join(group string, conn ConnID)

	// Leave removes a connection from a broadcast group
	Leave(group string, conn ConnID)

	// EmitTo unicasts an event to a single connection
	EmitTo(conn ConnID, event protocol.EventName, payload any)

	// EmitToGroup broadcasts an event to every connection in a group.
	// A non-empty exclude skips that connection (the originator).
	EmitToGroup(group string, event protocol.EventName, payload any, exclude ConnID)
}

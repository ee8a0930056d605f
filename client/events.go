package client

import "time"

// Event is anything the Transport publishes on its event channel.
type Event interface {
	event()
}

// ConnectedEvent is dispatched when the handshake of a new connection succeeds.
type ConnectedEvent struct {
	URL string
}

// DisconnectedEvent is dispatched when the current connection closes or a dial
// fails. Final is set when no reconnect will follow.
type DisconnectedEvent struct {
	Err   error
	Final bool
}

// ReconnectingEvent is dispatched when a reconnect has been scheduled.
type ReconnectingEvent struct {
	Attempt int
	Max     int
	Delay   time.Duration
}

// MessageEvent carries one well-formed server frame.
type MessageEvent struct {
	Message Message
}

func (ConnectedEvent) event()    {}
func (DisconnectedEvent) event() {}
func (ReconnectingEvent) event() {}
func (MessageEvent) event()      {}

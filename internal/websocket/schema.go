// Package websocket holds the wire schema and helpers shared by the
// monitor endpoint. Messages are small typed JSON frames; session events
// themselves travel opaque, exactly as published on the Redis channel.
package websocket

// Action names a client → server message.
type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope decodes just enough of an inbound frame to dispatch on
// its action.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// Event names a server → client message.
type Event string

const (
	EventError   Event = "error"
	EventSession Event = "session"
	EventPong    Event = "pong"
)

// SessionEventResponse forwards one session lifecycle event to a monitor
// connection. Payload is the published JSON verbatim.
type SessionEventResponse struct {
	Event   Event  `json:"event"`
	Payload string `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// Package ws carries chat traffic over a websocket: one session bridge per
// connection pulls inbound user text, runs the refinement loop, persists the
// turn and emits status/result events back to the client.
package ws

// InboundEvent is what the client sends. Only type "message" is acted on;
// unrecognized types are ignored without error.
type InboundEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type typingEvent struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"isTyping"`
}

type messageEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Emitter delivers outbound events to one client. Implemented by connEmitter
// over a websocket connection.
type Emitter interface {
	EmitTyping(isTyping bool) error
	EmitMessage(text string) error
	EmitError(message string) error
}

package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// connEmitter serializes writes to one websocket connection. gorilla allows
// at most one concurrent writer.
type connEmitter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newConnEmitter(conn *websocket.Conn) *connEmitter {
	return &connEmitter{conn: conn}
}

func (e *connEmitter) EmitTyping(isTyping bool) error {
	return e.write(typingEvent{Type: "typing", IsTyping: isTyping})
}

func (e *connEmitter) EmitMessage(text string) error {
	return e.write(messageEvent{Type: "message", Message: text})
}

func (e *connEmitter) EmitError(message string) error {
	return e.write(messageEvent{Type: "error", Message: message})
}

func (e *connEmitter) write(v interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn.WriteJSON(v)
}

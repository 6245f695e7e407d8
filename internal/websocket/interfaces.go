package websocket

import (
	"context"
	"net"
	"time"
)

// Connection is the part of *websocket.Conn a client uses.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() net.Addr
}

// Publisher is the side of the hub the comparison service depends on.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{})
}

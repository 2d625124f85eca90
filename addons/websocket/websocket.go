// Package websocket upgrades lungo routes to WebSocket connections using
// golang.org/x/net/websocket.
package websocket

import (
	"golang.org/x/net/websocket"

	"github.com/buildwithgo/lungo"
)

// Handler handles an established WebSocket connection.
type Handler func(*websocket.Conn)

// ContextHandler handles an established WebSocket connection together
// with the originating request context, giving access to path parameters
// and request-scoped values.
type ContextHandler func(*lungo.Context, *websocket.Conn)

// New returns a lungo handler that upgrades the connection to a WebSocket
// and hands it to handler. The handler owns the connection; the request
// completes when it returns.
func New(handler Handler) lungo.Handler {
	return func(c *lungo.Context) error {
		websocket.Handler(handler).ServeHTTP(c.Writer, c.Request)
		return nil
	}
}

// NewWithContext is like New but also passes the request context through
// to the handler.
func NewWithContext(handler ContextHandler) lungo.Handler {
	return func(c *lungo.Context) error {
		websocket.Handler(func(conn *websocket.Conn) {
			handler(c, conn)
		}).ServeHTTP(c.Writer, c.Request)
		return nil
	}
}

// SendJSON marshals v and writes it as a single text frame.
func SendJSON(conn *websocket.Conn, v interface{}) error {
	return websocket.JSON.Send(conn, v)
}

// ReceiveJSON reads a single frame and unmarshals it into v.
func ReceiveJSON(conn *websocket.Conn, v interface{}) error {
	return websocket.JSON.Receive(conn, v)
}

// SendText writes a single text frame.
func SendText(conn *websocket.Conn, msg string) error {
	return websocket.Message.Send(conn, msg)
}

// ReceiveText reads a single text frame.
func ReceiveText(conn *websocket.Conn) (string, error) {
	var msg string
	err := websocket.Message.Receive(conn, &msg)
	return msg, err
}

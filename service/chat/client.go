package chat

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one live websocket connection. UserID/DisplayName stay empty
// until a join frame binds an identity; an unbound client still receives
// broadcasts and presence pushes but can never be a directed-send target.
type Client struct {
	ConnID      string
	UserID      string
	DisplayName string
	WS          *websocket.Conn
	Send        chan []byte // outbound queue, drained by the single write pump

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(connID string, ws *websocket.Conn, sendQueueSize int) *Client {
	return &Client{
		ConnID: connID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Bound reports whether a join frame has attached an identity.
func (c *Client) Bound() bool { return c.UserID != "" }

// TrySend queues a payload without blocking; a full queue drops it.
// The send queue is never closed (fanout workers may still hold a
// snapshot containing this client), the write pump exits via done.
func (c *Client) TrySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Close signals the write pump to shut down. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) Done() <-chan struct{} { return c.done }

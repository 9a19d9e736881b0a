package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"VProject/logger"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one live connection of one user. A user may hold several
// connections (devices), each with its own Client. All outbound traffic
// goes through Send, drained by a single writer goroutine; readers never
// write to the socket directly.
type Client struct {
	ConnID string
	UserID int64
	WS     *websocket.Conn // nil in unit tests; Send is still observable
	Send   chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates the connection object. sendQueueSize bounds the
// outbound queue; a full queue drops frames rather than blocking the
// sender (slow-client policy).
func NewClient(connID string, userID int64, ws *websocket.Conn, sendQueueSize int) *Client {
	return &Client{
		ConnID: connID,
		UserID: userID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Enqueue queues a frame for the writer. Reports false when the client is
// closed or its queue is full (the frame is dropped).
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- payload:
		return true
	default:
		logger.Warnf("[client] send queue full, dropping frame conn=%s user=%d", c.ConnID, c.UserID)
		return false
	}
}

// WritePump drains Send onto the socket and keeps the connection alive
// with pings. Runs as the connection's single writer goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.Send:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close shuts the connection down; safe to call multiple times and from
// any goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.WS != nil {
			_ = c.WS.Close()
		}
	})
}

// Closed reports whether Close ran.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

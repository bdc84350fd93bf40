package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dom/roleplay-api/internal/realtime"
	gorillaWS "github.com/gorilla/websocket"
)

// WSClient is a test WebSocket client
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *realtime.Message
	errors   chan error
	done     chan struct{}
	mu       sync.Mutex
}

// NewWSClient creates a new WebSocket test client
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *realtime.Message, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

// readPump reads messages from the WebSocket connection
func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			case c.errors <- err:
			default:
			}
			return
		}

		var msg realtime.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			select {
			case c.errors <- err:
			default:
			}
			continue
		}

		select {
		case c.messages <- &msg:
		case <-c.done:
			return
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

// WaitForMessage returns the next message of the given type, skipping others
func (c *WSClient) WaitForMessage(msgType realtime.MessageType, timeout time.Duration) *realtime.Message {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg, ok := <-c.messages:
			if !ok {
				c.t.Fatalf("connection closed while waiting for %s", msgType)
				return nil
			}
			if msg.Type == msgType {
				return msg
			}
		case err := <-c.errors:
			c.t.Fatalf("websocket error while waiting for %s: %v", msgType, err)
			return nil
		case <-deadline:
			c.t.Fatalf("timeout waiting for %s", msgType)
			return nil
		}
	}
}

// ExpectNoMessage fails if any message arrives within the window
func (c *WSClient) ExpectNoMessage(window time.Duration) {
	c.t.Helper()

	select {
	case msg, ok := <-c.messages:
		if ok {
			c.t.Fatalf("unexpected message %s", msg.Type)
		}
	case <-time.After(window):
	}
}

package realtime

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/carehub/storefront/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10

	sendBuffer = 64
)

// controlMessage is what clients send to change their subscriptions.
type controlMessage struct {
	Action  string   `json:"action"`
	Streams []string `json:"streams"`
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	streams map[string]struct{} // guarded by hub.mu
	send    chan Message
	done    chan struct{}
	once    sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn) *client {
	return &client{
		hub:     hub,
		conn:    conn,
		streams: make(map[string]struct{}),
		send:    make(chan Message, sendBuffer),
		done:    make(chan struct{}),
	}
}

func (c *client) enqueue(message Message) {
	select {
	case <-c.done:
	case c.send <- message:
	default:
		metrics.RealtimeDropped.Inc()
		c.hub.log.Warn("disconnecting slow client", zap.String("remote", c.conn.RemoteAddr().String()))
		c.close()
	}
}

func (c *client) readLoop() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("client closed unexpectedly", zap.Error(err))
			}
			return
		}
		if len(payload) > 0 {
			c.handleControl(payload)
		}
	}
}

func (c *client) handleControl(payload []byte) {
	var ctrl controlMessage
	if err := json.Unmarshal(payload, &ctrl); err != nil {
		c.hub.log.Debug("invalid control payload", zap.Error(err))
		return
	}

	switch strings.ToLower(strings.TrimSpace(ctrl.Action)) {
	case "subscribe":
		c.hub.subscribe(c, ctrl.Streams)
	case "unsubscribe":
		c.hub.unsubscribe(c, ctrl.Streams)
	case "ping":
		c.enqueue(Message{Event: "pong"})
	default:
		c.hub.log.Debug("unsupported control action", zap.String("action", ctrl.Action))
	}
}

func (c *client) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// close leaves every stream and releases the socket once.
func (c *client) close() {
	c.once.Do(func() {
		c.hub.leave(c)
		close(c.done)
		_ = c.conn.Close()
	})
}

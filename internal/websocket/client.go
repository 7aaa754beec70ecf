package websocket

import (
	"encoding/json"
	"time"

	"offline-chat-be/pkg/events"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Client is one browser tab. Several tabs of the same profile share an id.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	send chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, id string, buffer int) *Client {
	return &Client{hub: hub, conn: conn, id: id, send: make(chan []byte, buffer)}
}

func (c *Client) ID() string {
	return c.id
}

// Serve registers the connection and blocks until it closes. The first frame
// tells the tab which client id it was given, which matters when it
// connected without one.
func (h *Hub) Serve(conn *websocket.Conn, clientID string) {
	c := newClient(h, conn, clientID, sendBuffer)
	if hello, err := welcome(clientID, h.origin); err == nil {
		c.send <- hello
	}
	h.register <- c

	go c.writePump()
	c.readPump()
}

func welcome(clientID, instance string) ([]byte, error) {
	return json.Marshal(events.ToEnvelope(events.New(events.StatusConnected, map[string]interface{}{
		"client_id": clientID,
		"instance":  instance,
	})))
}

// readPump only drains control frames; the status stream is one-way.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("HUB", "Unexpected websocket close", map[string]interface{}{
					"client_id": c.id,
					"error":     err.Error(),
				})
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

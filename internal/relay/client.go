package relay

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"LiveBoard/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // a redo carries a whole stroke
)

// Client is one websocket connection. Its id doubles as the user id and
// the presence connection id.
type Client struct {
	id     string
	color  string
	conn   *websocket.Conn
	send   chan []byte
	room   *Room
	hub    *Hub
	cursor *rate.Limiter
	log    *slog.Logger
}

func newClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	limit := rate.Inf
	if hub.cfg.CursorThrottle > 0 {
		limit = rate.Every(hub.cfg.CursorThrottle)
	}
	return &Client{
		id:     id,
		conn:   conn,
		hub:    hub,
		cursor: rate.NewLimiter(limit, 1),
		log:    slog.Default().With("component", "relay-client", "client", id),
	}
}

// readPump runs on the handler goroutine until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.room.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read failed", "error", err)
			}
			return
		}
		c.handle(data)
	}
}

// handle stamps the sender's identity onto a frame and forwards it. Bad
// frames are skipped; the connection stays up.
func (c *Client) handle(data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		c.log.Warn("skipping frame", "error", err)
		return
	}

	switch m := msg.(type) {
	case protocol.GetUserID:
		reply, err := protocol.Encode(protocol.UserID{UserID: c.id})
		if err != nil {
			c.log.Error("encode userId reply", "error", err)
			return
		}
		c.room.direct(c, reply)
	case protocol.Draw:
		m.UserID = c.id
		c.forward(m)
	case protocol.Undo:
		m.UserID = c.id
		c.forward(m)
	case protocol.Redo:
		m.UserID = c.id
		c.forward(m)
	case protocol.Cursor:
		if !c.cursor.Allow() {
			return
		}
		m.ConnectionID = c.id
		m.Color = c.color
		c.forward(m)
	default:
		c.log.Debug("ignoring client frame", "type", msg.Type())
	}
}

func (c *Client) forward(m protocol.Message) {
	frame, err := protocol.Encode(m)
	if err != nil {
		c.log.Error("encode frame", "type", m.Type(), "error", err)
		return
	}
	if err := c.hub.publish(c.room.code, c.id, frame); err != nil {
		c.log.Warn("publish failed", "type", m.Type(), "error", err)
	}
}

// writePump drains the send queue. The room closes the queue when the
// client leaves or falls behind.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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

// Package net connects a desktop client to a relay and finds relays on the
// local network.
package net

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"

	"LiveBoard/internal/protocol"
)

// URLScheme prefixes share links: liveboard://host:port/ROOM.
const URLScheme = "liveboard://"

const (
	writeWait         = 10 * time.Second
	defaultSendBuffer = 256
)

// Link is a parsed share link.
type Link struct {
	Host string // host:port of the relay
	Room string
}

// ParseLink parses a liveboard:// share link.
func ParseLink(raw string) (Link, error) {
	if !strings.HasPrefix(raw, URLScheme) {
		return Link{}, fmt.Errorf("parse link %q: missing %s prefix", raw, URLScheme)
	}
	rest := strings.Trim(strings.TrimPrefix(raw, URLScheme), "/")
	host, room, _ := strings.Cut(rest, "/")
	if host == "" || room == "" {
		return Link{}, fmt.Errorf("parse link %q: want %shost:port/ROOM", raw, URLScheme)
	}
	return Link{Host: host, Room: room}, nil
}

func (l Link) String() string {
	return URLScheme + l.Host + "/" + l.Room
}

// WebSocketURL returns the relay endpoint for the link's room.
func (l Link) WebSocketURL() string {
	u := url.URL{Scheme: "ws", Host: l.Host, Path: "/ws", RawQuery: url.Values{"room": {l.Room}}.Encode()}
	return u.String()
}

// Client is one websocket connection to a relay, redialed on failure.
type Client struct {
	url    string
	dialer *websocket.Dialer

	// NewBackOff returns the redial policy for one outage.
	NewBackOff func() backoff.BackOff

	// SendBuffer is the number of outbound frames queued per connection.
	// Frames beyond it are dropped.
	SendBuffer int

	out  chan []byte // nil while disconnected
	user string      // identity to resume on redial
	mu   sync.Mutex
	open atomic.Bool

	log *slog.Logger
}

// NewClient returns a client for the websocket endpoint wsURL.
func NewClient(wsURL string) *Client {
	return &Client{
		url:    wsURL,
		dialer: websocket.DefaultDialer,
		NewBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
		SendBuffer: defaultSendBuffer,
		log:        slog.Default().With("component", "transport"),
	}
}

// Open reports whether the channel is currently usable.
func (c *Client) Open() bool { return c.open.Load() }

// Resume records the identity the relay bound to this client. Later dials
// ask the relay to keep it, so undo ownership survives a reconnect.
func (c *Client) Resume(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = userID
}

// Run dials the relay and pumps inbound frames to onMessage until ctx is
// done. onOpen fires after every successful (re)connect. Run returns
// ctx.Err() on cancellation.
func (c *Client) Run(ctx context.Context, onOpen func(), onMessage func([]byte)) error {
	for {
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("dial relay %s: %w", c.url, err)
		}

		c.attach(conn)
		c.log.Info("connected", "url", c.url)
		if onOpen != nil {
			onOpen()
		}

		err = c.readLoop(ctx, conn, onMessage)
		c.detach(conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("connection lost", "error", err)
	}
}

// dialURL is the endpoint plus the identity to resume, if any.
func (c *Client) dialURL() string {
	c.mu.Lock()
	user := c.user
	c.mu.Unlock()
	if user == "" {
		return c.url
	}
	u, err := url.Parse(c.url)
	if err != nil {
		return c.url
	}
	q := u.Query()
	q.Set("user", user)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	var conn *websocket.Conn
	op := func() error {
		var err error
		conn, _, err = c.dialer.DialContext(ctx, c.dialURL(), nil)
		return err
	}
	notify := func(err error, next time.Duration) {
		c.log.Debug("dial failed, retrying", "error", err, "in", next)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(c.NewBackOff(), ctx), notify); err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, onMessage func([]byte)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if kind != websocket.TextMessage {
			continue
		}
		if onMessage != nil {
			onMessage(data)
		}
	}
}

// attach installs a fresh outbound queue for conn and starts its writer.
func (c *Client) attach(conn *websocket.Conn) {
	size := c.SendBuffer
	if size <= 0 {
		size = defaultSendBuffer
	}
	out := make(chan []byte, size)
	go c.writePump(conn, out)

	c.mu.Lock()
	c.out = out
	c.mu.Unlock()
	c.open.Store(true)
}

// detach closes the queue, which stops the writer, and the connection.
func (c *Client) detach(conn *websocket.Conn) {
	c.open.Store(false)
	c.mu.Lock()
	if c.out != nil {
		close(c.out)
		c.out = nil
	}
	c.mu.Unlock()
	conn.Close()
}

// writePump owns all data writes on conn. After a failed write it closes
// the connection, which ends the read loop, and discards the rest of the
// queue.
func (c *Client) writePump(conn *websocket.Conn, out <-chan []byte) {
	failed := false
	for data := range out {
		if failed {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.log.Debug("write failed", "error", err)
			failed = true
			conn.Close()
		}
	}
}

// Send encodes m and queues it for the writer. It never blocks: messages
// sent while disconnected or with a full queue are dropped.
func (c *Client) Send(m protocol.Message) {
	if !c.open.Load() {
		return
	}
	data, err := protocol.Encode(m)
	if err != nil {
		c.log.Error("encode outbound message", "type", m.Type(), "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out == nil {
		return
	}
	select {
	case c.out <- data:
	default:
		c.log.Warn("send queue full, dropping message", "type", m.Type())
	}
}

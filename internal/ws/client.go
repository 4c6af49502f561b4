package ws

import (
	"encoding/json"
	"time"

	"task_manager/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 64
)

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
	// ExpiresAt is the expiry of the token that opened the connection. The
	// connection is closed at that moment; zero means no deadline.
	ExpiresAt time.Time
}

func NewClient(userID string, conn *websocket.Conn, hub *Hub, expiresAt time.Time) *Client {
	return &Client{
		UserID:    userID,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		Hub:       hub,
		ExpiresAt: expiresAt,
	}
}

// Run registers the client, starts the writer and blocks in the reader until
// the connection goes away.
func (c *Client) Run() {
	// queue the handshake before registering so it is always the first frame
	ready, _ := json.Marshal(Message{Type: MsgReady})
	c.Send <- ready

	c.Hub.Register(c)
	go c.writePump()
	c.readPump()
}

// read
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(Message{Type: MsgError, Message: "invalid message"})
			continue
		}
		switch msg.Type {
		case MsgPing:
			c.reply(Message{Type: MsgPong})
		default:
			c.reply(Message{Type: MsgError, Message: "unknown message type"})
		}
	}
}

// reply queues a control frame. It goes through the hub lock so it never races
// with Unregister closing the channel.
func (c *Client) reply(m Message) {
	b, _ := json.Marshal(m)
	c.Hub.mu.RLock()
	defer c.Hub.mu.RUnlock()
	if _, ok := c.Hub.clients[c.UserID][c]; !ok {
		return
	}
	select {
	case c.Send <- b:
	default:
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	var expired <-chan time.Time
	if !c.ExpiresAt.IsZero() {
		timer := time.NewTimer(time.Until(c.ExpiresAt))
		defer timer.Stop()
		expired = timer.C
	}
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-expired:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "token expired")
			_ = c.Conn.WriteMessage(websocket.CloseMessage, msg)
			logger.Debug("ws token expired, closing", "user_id", c.UserID)
			return

		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package realtime

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	admin  bool
	// 空なら全テーブル
	tables map[string]bool
	send   chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64, admin bool, tables []string) *Client {
	t := make(map[string]bool, len(tables))
	for _, name := range tables {
		t[name] = true
	}
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		admin:  admin,
		tables: t,
		send:   make(chan []byte, sendBuffer),
	}
}

// 管理者は全件、お客様は自分宛てだけ
func (c *Client) wants(topic string, owner int64) bool {
	if len(c.tables) > 0 && !c.tables[topic] {
		return false
	}
	return c.admin || c.userID == owner
}

// 接続が切れるまでブロックする
func (c *Client) Serve() {
	c.hub.register(c)
	go c.writePump()
	c.readPump()
}

// クライアントからのメッセージは読み捨て。切断検知とpongのため
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"bakery/internal/outbox"

	"github.com/labstack/echo/v4"
)

// このプロセスに繋がっているWebSocketクライアントへの配信
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	log     echo.Logger
}

func NewHub(log echo.Logger) *Hub {
	return &Hub{clients: make(map[*Client]struct{}), log: log}
}

func (h *Hub) Name() string { return "websocket" }

// outbox.Publisher。Redisが無い構成ではdispatcherから直接呼ばれる
func (h *Hub) Publish(_ context.Context, env outbox.Envelope) error {
	h.Deliver(env)
	return nil
}

// 購読テーブルと持ち主で絞ってから送る
func (h *Hub) Deliver(env outbox.Envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		h.log.Errorf("realtime: marshal: %v", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients {
		if !c.wants(env.Topic, env.UserID) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warnf("realtime: dropping slow client user=%d", c.userID)
		h.unregister(c)
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

package handler

import (
	"net/http"
	"strings"

	"bakery/internal/config"
	"bakery/internal/repository"
	"bakery/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(hub *realtime.Hub, feURL string) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// フロントのオリジンだけ許可。Originなしはアプリ以外のクライアント
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == feURL
			},
		},
	}
}

func (h *RealtimeHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := customerGroup(e, "/realtime", cfg, userRepo)
	g.GET("", h.connect)
}

// ?tables=reservations,notifications
func (h *RealtimeHandler) connect(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgradeがエラーレスポンスを書き込み済み
		c.Logger().Warnf("websocket upgrade: %v", err)
		return nil
	}

	client := realtime.NewClient(h.hub, conn, userID, isAdmin(c), parseTables(c.QueryParam("tables")))
	client.Serve()
	return nil
}

func parseTables(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

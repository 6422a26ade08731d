package handler

import (
	"net/http"

	"bakery/internal/config"
	"bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	uc *usecase.NotificationUsecase
}

func NewNotificationHandler(uc *usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

func (h *NotificationHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := customerGroup(e, "/notifications", cfg, userRepo)
	g.GET("", h.list)
	g.GET("/unread-count", h.unreadCount)
	g.PATCH("/read-all", h.markAllRead)
	g.PATCH("/:id/read", h.markRead)
	g.DELETE("/:id", h.delete)

	admin := adminGroup(e, cfg, userRepo)
	admin.POST("/notifications", h.send)
}

func (h *NotificationHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return badRequest(c, "Límite inválido")
	}

	out, err := h.uc.List(c.Request().Context(), userID, usecase.ListNotificationsInput{
		Limit:      limit,
		Type:       c.QueryParam("type"),
		RecentOnly: queryBool(c, "recent"),
		UnreadOnly: queryBool(c, "unread"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) unreadCount(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	n, err := h.uc.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

func (h *NotificationHandler) markRead(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID inválido")
	}

	if err := h.uc.MarkRead(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Notificación marcada como leída"})
}

func (h *NotificationHandler) markAllRead(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	n, err := h.uc.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": n})
}

func (h *NotificationHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID inválido")
	}

	if err := h.uc.Delete(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Notificación eliminada"})
}

// 管理者からの直接メッセージ
func (h *NotificationHandler) send(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.SendNotificationInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Cuerpo de la solicitud inválido")
	}

	out, err := h.uc.Send(c.Request().Context(), adminID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

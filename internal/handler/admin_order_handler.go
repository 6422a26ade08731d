package handler

import (
	"net/http"

	"bakery/internal/config"
	"bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)

	admin.GET("/orders", h.list)
	// :id より先に登録
	admin.GET("/orders/stats", h.stats)
	admin.GET("/orders/:id", h.detail)
	admin.PATCH("/orders/:id/status", h.updateStatus)
	admin.PATCH("/orders/:id/payment", h.updatePayment)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "Página inválida")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "Límite inválido")
	}
	userID, ok := queryInt64Ptr(c, "user_id")
	if !ok {
		return badRequest(c, "user_id inválido")
	}

	from, err := usecase.ParseDateParam(c.QueryParam("from"))
	if err != nil {
		return writeError(c, err)
	}
	to, err := usecase.ParseDateParam(c.QueryParam("to"))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), repository.AdminOrderListFilter{
		Page:          page,
		Limit:         limit,
		Status:        c.QueryParam("status"),
		PaymentStatus: c.QueryParam("payment_status"),
		UserID:        userID,
		From:          from,
		To:            to,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	orderID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID inválido")
	}

	out, err := h.uc.Get(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID inválido")
	}

	var req usecase.AdminUpdateOrderStatusInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Cuerpo de la solicitud inválido")
	}

	// ★操作した管理者IDを取得（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.SetOrderStatus(c.Request().Context(), adminID, orderID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updatePayment(c echo.Context) error {
	orderID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID inválido")
	}

	var req usecase.AdminUpdatePaymentStatusInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Cuerpo de la solicitud inválido")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.SetPaymentStatus(c.Request().Context(), adminID, orderID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) stats(c echo.Context) error {
	from, err := usecase.ParseDateParam(c.QueryParam("from"))
	if err != nil {
		return writeError(c, err)
	}
	to, err := usecase.ParseDateParam(c.QueryParam("to"))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Stats(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

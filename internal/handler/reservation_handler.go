package handler

import (
	"net/http"

	"bakery/internal/config"
	"bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReservationHandler struct {
	uc *usecase.ReservationUsecase
}

func NewReservationHandler(uc *usecase.ReservationUsecase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	// 空き枠は公開
	e.GET("/reservations/slots", h.slots)

	g := customerGroup(e, "/reservations", cfg, userRepo)
	g.POST("", h.create)
	g.GET("", h.mine)
	g.POST("/:id/cancel", h.cancel)
}

func (h *ReservationHandler) slots(c echo.Context) error {
	productID, ok := queryInt64Ptr(c, "product_id")
	if !ok || productID == nil {
		return badRequest(c, "product_id inválido")
	}

	out, err := h.uc.GetAvailableSlots(c.Request().Context(), *productID, c.QueryParam("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReservationHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.CreateReservationInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Cuerpo de la solicitud inválido")
	}

	out, err := h.uc.CreateReservation(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ReservationHandler) mine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListMyReservations(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReservationHandler) cancel(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	reservationID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID inválido")
	}

	out, err := h.uc.CancelMyReservationGroup(c.Request().Context(), userID, reservationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

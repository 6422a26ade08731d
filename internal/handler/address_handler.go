package handler

import (
	"net/http"

	"bakery/internal/config"
	"bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

func (h *AddressHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := customerGroup(e, "/addresses", cfg, userRepo)

	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/default", h.SetDefault)
}

func (h *AddressHandler) List(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "No autorizado")
	}

	list, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return addrWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

func (h *AddressHandler) Create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "No autorizado")
	}

	var req usecase.AddressRequest
	if err := c.Bind(&req); err != nil {
		return addrWriteError(c, http.StatusBadRequest, "Datos de dirección inválidos")
	}

	created, err := h.uc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return addrWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *AddressHandler) Update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "No autorizado")
	}
	addressID, ok := paramID(c, "id")
	if !ok {
		return addrWriteError(c, http.StatusBadRequest, "ID inválido")
	}

	var req usecase.AddressRequest
	if err := c.Bind(&req); err != nil {
		return addrWriteError(c, http.StatusBadRequest, "Datos de dirección inválidos")
	}

	if err := h.uc.Update(c.Request().Context(), userID, addressID, req); err != nil {
		return addrWriteUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Dirección actualizada"})
}

func (h *AddressHandler) Delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "No autorizado")
	}
	addressID, ok := paramID(c, "id")
	if !ok {
		return addrWriteError(c, http.StatusBadRequest, "ID inválido")
	}

	if err := h.uc.Delete(c.Request().Context(), userID, addressID); err != nil {
		return addrWriteUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Dirección eliminada"})
}

func (h *AddressHandler) SetDefault(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "No autorizado")
	}
	addressID, ok := paramID(c, "id")
	if !ok {
		return addrWriteError(c, http.StatusBadRequest, "ID inválido")
	}

	if err := h.uc.SetDefault(c.Request().Context(), userID, addressID); err != nil {
		return addrWriteUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Dirección predeterminada actualizada"})
}

func addrWriteError(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Error: msg})
}

func addrWriteUsecaseError(c echo.Context, err error) error {
	switch err {
	case usecase.ErrValidation:
		return addrWriteError(c, http.StatusBadRequest, "Datos de dirección inválidos")
	case usecase.ErrUnauthorized:
		return addrWriteError(c, http.StatusUnauthorized, "No autorizado")
	case usecase.ErrForbidden:
		return addrWriteError(c, http.StatusForbidden, "Prohibido")
	case usecase.ErrConflict:
		return addrWriteError(c, http.StatusConflict, "La dirección no se puede eliminar")
	case usecase.ErrNotFound:
		return addrWriteError(c, http.StatusNotFound, "Dirección no encontrada")
	default:
		c.Logger().Error(err)
		return addrWriteError(c, http.StatusInternalServerError, "Error interno del servidor")
	}
}

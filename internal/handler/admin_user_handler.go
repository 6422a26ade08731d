package handler

import (
	"net/http"

	"bakery/internal/config"
	"bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc *usecase.AuthUsecase
}

func NewAdminUserHandler(uc *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)

	admin.POST("/users/:id/force-logout", h.ForceLogout)
}

func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	targetID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "user_id inválido")
	}
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	res, err := h.uc.ForceLogout(c.Request().Context(), adminID, targetID)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}

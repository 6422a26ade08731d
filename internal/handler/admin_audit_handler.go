package handler

import (
	"net/http"
	"strings"

	"bakery/internal/config"
	"bakery/internal/domain/model"
	"bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminAuditHandler struct {
	uc *usecase.AuditUsecase
}

func NewAdminAuditHandler(uc *usecase.AuditUsecase) *AdminAuditHandler {
	return &AdminAuditHandler{uc: uc}
}

func (h *AdminAuditHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)
	admin.GET("/audit-logs", h.list)
}

func (h *AdminAuditHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "Página inválida")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "Límite inválido")
	}

	var f repository.AuditLogFilter
	if f.ActorUserID, ok = queryInt64Ptr(c, "actor_user_id"); !ok {
		return badRequest(c, "actor_user_id inválido")
	}
	if f.ResourceID, ok = queryInt64Ptr(c, "resource_id"); !ok {
		return badRequest(c, "resource_id inválido")
	}
	if v := strings.TrimSpace(c.QueryParam("action")); v != "" {
		a := model.AuditAction(strings.ToUpper(v))
		f.Action = &a
	}
	if v := strings.TrimSpace(c.QueryParam("resource_type")); v != "" {
		rt := model.AuditResourceType(strings.ToLower(v))
		f.ResourceType = &rt
	}

	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	f.CreatedFrom = from
	f.CreatedTo = to

	out, err := h.uc.List(c.Request().Context(), page, limit, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

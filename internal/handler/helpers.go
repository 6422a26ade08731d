package handler

import (
	"net/http"
	"strconv"
	"strings"

	"bakery/internal/config"
	"bakery/internal/domain/model"
	"bakery/internal/middleware"
	"bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			c.Logger().Error(he.Message)
		}
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Error interno del servidor"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "No autorizado"})
}

// AuthJWTが入れたuser_id
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, false
	}

	return id, true
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return role == string(model.RoleAdmin)
}

// :id などのパスパラメータ
func paramID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// 空ならdef、数字でなければfalse
func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func queryInt64Ptr(c echo.Context, name string) (*int64, bool) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// "1" / "true" だけtrue
func queryBool(c echo.Context, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.QueryParam(name))) {
	case "1", "true":
		return true
	}
	return false
}

// JWT必須 + token_version一致
func customerGroup(e *echo.Echo, prefix string, cfg config.Config, userRepo repository.UserRepository) *echo.Group {
	return e.Group(prefix,
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)
}

// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
func adminGroup(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) *echo.Group {
	return e.Group("/admin",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	)
}

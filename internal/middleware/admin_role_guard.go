package middleware

import (
	"net/http"

	"bakery/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextに入っているroleがADMINかどうかを確認します。
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("No autorizado"))
			}

			//USERは拒否、ADMINだけ許可
			if role != string(model.RoleAdmin) {
				return c.JSON(http.StatusForbidden, errorJSON("Solo administradores"))
			}

			return next(c)
		}
	}
}

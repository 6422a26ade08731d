package server

import (
	"bakery/internal/config"
	"bakery/internal/handler"
	"bakery/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth             *handler.AuthHandler
	Product          *handler.ProductHandler
	Cart             *handler.CartHandler
	Address          *handler.AddressHandler
	Order            *handler.OrderHandler
	Reservation      *handler.ReservationHandler
	Notification     *handler.NotificationHandler
	Realtime         *handler.RealtimeHandler
	AdminOrder       *handler.AdminOrderHandler
	AdminReservation *handler.AdminReservationHandler
	AdminProduct     *handler.AdminProductHandler
	AdminAudit       *handler.AdminAuditHandler
	AdminUser        *handler.AdminUserHandler
}

type routeRegistrar interface {
	RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository)
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	// 公開
	h.Product.RegisterRoutes(e)

	for _, r := range []routeRegistrar{
		h.Auth,
		h.Reservation,
		h.Cart,
		h.Address,
		h.Order,
		h.Notification,
		h.Realtime,
		h.AdminOrder,
		h.AdminReservation,
		h.AdminProduct,
		h.AdminAudit,
		h.AdminUser,
	} {
		r.RegisterRoutes(e, cfg, userRepo)
	}
}

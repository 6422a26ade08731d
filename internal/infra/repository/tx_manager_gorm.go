package repository

import (
	"context"

	repo "bakery/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	carts         repo.CartRepository
	cartItems     repo.CartItemRepository
	products      repo.ProductRepository
	reservations  repo.ReservationRepository
	notifications repo.NotificationRepository
	auditLogs     repo.AuditLogRepository
	outbox        repo.OutboxRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository               { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository       { return r.orderItems }
func (r *txReposGorm) Carts() repo.CartRepository                 { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository         { return r.cartItems }
func (r *txReposGorm) Products() repo.ProductRepository           { return r.products }
func (r *txReposGorm) Reservations() repo.ReservationRepository   { return r.reservations }
func (r *txReposGorm) Notifications() repo.NotificationRepository { return r.notifications }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository         { return r.auditLogs }
func (r *txReposGorm) Outbox() repo.OutboxRepository              { return r.outbox }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		cart := NewCartGormRepository(tx)
		r := &txReposGorm{
			orders:        NewOrderGormRepository(tx),
			orderItems:    NewOrderItemGormRepository(tx),
			carts:         cart,
			cartItems:     cart,
			products:      NewProductGormRepository(tx),
			reservations:  NewReservationGormRepository(tx),
			notifications: NewNotificationGormRepository(tx),
			auditLogs:     NewAuditLogGormRepository(tx),
			outbox:        NewOutboxGormRepository(tx),
		}
		return fn(r)
	})
}

package repository

import (
	"context"
	"time"

	"bakery/internal/domain/model"

	"github.com/shopspring/decimal"
)

type AdminOrderListFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	UserID        *int64
	From          *time.Time
	To            *time.Time
}

// ステータスごとの件数と合計
type OrderStatusCount struct {
	Status model.OrderStatus
	Count  int64
	Total  decimal.Decimal
}

type OrderRepository interface {
	// 明細（商品名・サイズ込み）をpreloadして返す
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	//ダッシュボード集計。from/toはnilなら全期間
	CountByStatus(ctx context.Context, from, to *time.Time) ([]OrderStatusCount, error)
}

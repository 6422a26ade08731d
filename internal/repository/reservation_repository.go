package repository

import (
	"context"
	"time"

	"bakery/internal/domain/model"
)

type ReservationListFilter struct {
	Status     string
	CustomerID *int64
	From       *time.Time
	To         *time.Time
	// asc / desc（日付・時刻順）
	Sort string
}

// 予約行の保存と、複合キー単位の更新・削除
type ReservationRepository interface {
	CreateBulk(ctx context.Context, rows []model.Reservation) ([]model.Reservation, error)
	FindByID(ctx context.Context, id int64) (model.Reservation, error)

	// Product / Size / Customer をpreloadして返す
	List(ctx context.Context, f ReservationListFilter) ([]model.Reservation, error)
	// id昇順
	ListByKey(ctx context.Context, key model.ReservationKey) ([]model.Reservation, error)

	UpdateStatusByKey(ctx context.Context, key model.ReservationKey, status model.ReservationStatus) (int64, error)
	DeleteByKey(ctx context.Context, key model.ReservationKey) (int64, error)

	// その商品・日付で指定ステータスの予約が入っている時刻
	BookedTimes(ctx context.Context, productID int64, date string, statuses []model.ReservationStatus) ([]string, error)
	ExistsForCustomerAt(ctx context.Context, key model.ReservationKey, statuses []model.ReservationStatus) (bool, error)
}

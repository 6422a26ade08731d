package repository

import (
	"context"
	"errors"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationGormRepository struct {
	db *gorm.DB
}

func NewReservationGormRepository(db *gorm.DB) *ReservationGormRepository {
	return &ReservationGormRepository{db: db}
}

func withReservationRefs(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Size").
		Preload("Customer")
}

func whereKey(db *gorm.DB, key model.ReservationKey) *gorm.DB {
	return db.Where("user_id = ? AND reservation_date = ? AND reservation_time = ?", key.CustomerID, key.Date, key.Time)
}

func (r *ReservationGormRepository) CreateBulk(ctx context.Context, rows []model.Reservation) ([]model.Reservation, error) {
	if len(rows) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReservationGormRepository) FindByID(ctx context.Context, id int64) (model.Reservation, error) {
	var row model.Reservation
	err := withReservationRefs(r.db.WithContext(ctx)).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Reservation{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	return row, nil
}

// 同じグループの行が並ぶよう、日付・時刻・ユーザー・idの順
func (r *ReservationGormRepository) List(ctx context.Context, f repo.ReservationListFilter) ([]model.Reservation, error) {
	q := withReservationRefs(r.db.WithContext(ctx))

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("user_id = ?", *f.CustomerID)
	}
	if f.From != nil {
		q = q.Where("reservation_date >= ?", f.From.Format(model.DateLayout))
	}
	if f.To != nil {
		q = q.Where("reservation_date <= ?", f.To.Format(model.DateLayout))
	}

	dir := "asc"
	if f.Sort == "desc" {
		dir = "desc"
	}

	var rows []model.Reservation
	err := q.
		Order("reservation_date " + dir).
		Order("reservation_time " + dir).
		Order("user_id asc").
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return []model.Reservation{}, err
	}
	return rows, nil
}

func (r *ReservationGormRepository) ListByKey(ctx context.Context, key model.ReservationKey) ([]model.Reservation, error) {
	var rows []model.Reservation
	if err := whereKey(withReservationRefs(r.db.WithContext(ctx)), key).Order("id asc").Find(&rows).Error; err != nil {
		return []model.Reservation{}, err
	}
	return rows, nil
}

// グループ全行を1文で更新
func (r *ReservationGormRepository) UpdateStatusByKey(ctx context.Context, key model.ReservationKey, status model.ReservationStatus) (int64, error) {
	res := whereKey(r.db.WithContext(ctx).Model(&model.Reservation{}), key).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *ReservationGormRepository) DeleteByKey(ctx context.Context, key model.ReservationKey) (int64, error) {
	res := whereKey(r.db.WithContext(ctx), key).Delete(&model.Reservation{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *ReservationGormRepository) BookedTimes(ctx context.Context, productID int64, date string, statuses []model.ReservationStatus) ([]string, error) {
	var times []string
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("product_id = ? AND reservation_date = ? AND status IN ?", productID, date, statuses).
		Distinct().
		Pluck("reservation_time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *ReservationGormRepository) ExistsForCustomerAt(ctx context.Context, key model.ReservationKey, statuses []model.ReservationStatus) (bool, error) {
	var count int64
	err := whereKey(r.db.WithContext(ctx).Model(&model.Reservation{}), key).
		Where("status IN ?", statuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

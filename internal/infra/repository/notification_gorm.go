package repository

import (
	"context"
	"errors"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"gorm.io/gorm"
)

type NotificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) *NotificationGormRepository {
	return &NotificationGormRepository{db: db}
}

func (r *NotificationGormRepository) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	if err := r.db.WithContext(ctx).Create(&n).Error; err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

func (r *NotificationGormRepository) FindByID(ctx context.Context, id int64) (model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Notification{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

func (r *NotificationGormRepository) ListByUserID(ctx context.Context, userID int64, f repo.NotificationFilter) ([]model.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Since != nil {
		q = q.Where("created_at >= ?", *f.Since)
	}
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var list []model.Notification
	if err := q.Order("created_at desc").Order("id desc").Find(&list).Error; err != nil {
		return []model.Notification{}, err
	}
	return list, nil
}

func (r *NotificationGormRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationGormRepository) MarkRead(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 未読だけを既読にする。更新件数を返す
func (r *NotificationGormRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

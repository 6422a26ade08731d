package repository

import (
	"context"
	"strings"
	"time"

	"bakery/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutboxGormRepository struct {
	db *gorm.DB
}

func NewOutboxGormRepository(db *gorm.DB) *OutboxGormRepository {
	return &OutboxGormRepository{db: db}
}

// NOTIFYはコミット時に届く
func (r *OutboxGormRepository) Create(ctx context.Context, ev model.OutboxEvent) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(&ev).Error; err != nil {
		return err
	}
	return db.Exec("SELECT pg_notify(?, ?)", model.OutboxChannel, string(ev.Topic)).Error
}

func (r *OutboxGormRepository) ClaimPending(ctx context.Context, limit int, maxAttempts int, now time.Time) ([]model.OutboxEvent, error) {
	var evs []model.OutboxEvent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("dispatched_at IS NULL AND attempts < ?", maxAttempts).
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", now).
		Order("id asc").
		Limit(limit).
		Find(&evs).Error
	if err != nil {
		return nil, err
	}
	return evs, nil
}

func (r *OutboxGormRepository) MarkDispatched(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("dispatched_at", at).Error
}

func (r *OutboxGormRepository) MarkFailed(ctx context.Context, id int64, deliveredTo []string, reason string, nextAttemptAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":        gorm.Expr("attempts + 1"),
			"last_error":      reason,
			"delivered_to":    strings.Join(deliveredTo, ","),
			"next_attempt_at": nextAttemptAt,
		}).Error
}

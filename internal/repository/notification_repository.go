package repository

import (
	"context"
	"time"

	"bakery/internal/domain/model"
)

type NotificationFilter struct {
	Limit      int
	Type       string
	Since      *time.Time
	UnreadOnly bool
}

type NotificationRepository interface {
	Create(ctx context.Context, n model.Notification) (model.Notification, error)
	FindByID(ctx context.Context, id int64) (model.Notification, error)
	// 新しい順
	ListByUserID(ctx context.Context, userID int64, f NotificationFilter) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

package repository

import (
	"context"
	"time"

	"bakery/internal/domain/model"
)

//監査ログの絞り込み条件。
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// 監査ログの保存・一覧取得の約束。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//新しい順。totalはLimit/Offset適用前の件数
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error)
}

package repository

import (
	"context"
	"time"

	"bakery/internal/domain/model"
)

type OutboxRepository interface {
	// 同じtxでpg_notifyも投げる
	Create(ctx context.Context, ev model.OutboxEvent) error
	// FOR UPDATE SKIP LOCKED。tx内で呼ぶこと。next_attempt_atがnowより先の行は取らない
	ClaimPending(ctx context.Context, limit int, maxAttempts int, now time.Time) ([]model.OutboxEvent, error)
	MarkDispatched(ctx context.Context, ids []int64, at time.Time) error
	// deliveredTo は成功済みのpublisher名。次回はそれ以外にだけ送る
	MarkFailed(ctx context.Context, id int64, deliveredTo []string, reason string, nextAttemptAt time.Time) error
}

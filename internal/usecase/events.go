package usecase

import (
	"context"
	"encoding/json"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"github.com/google/uuid"
)

// 変更と同じtxでoutboxに積む
func emit(ctx context.Context, r repo.TxRepos, topic model.OutboxTopic, op model.OutboxOperation, entityID, userID int64, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return dbError("Error al serializar el evento", err)
	}

	ev := model.OutboxEvent{
		EventID:   uuid.NewString(),
		Topic:     topic,
		Operation: op,
		EntityID:  entityID,
		UserID:    userID,
		Payload:   string(body),
	}
	if err := r.Outbox().Create(ctx, ev); err != nil {
		return dbError("Error al registrar el evento", err)
	}
	return nil
}

// before/afterはJSONにして残す
func audit(ctx context.Context, r repo.TxRepos, actorID int64, action model.AuditAction, resource model.AuditResourceType, resourceID int64, before, after any) error {
	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)

	log := model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   string(b),
		AfterJSON:    string(a),
		CreatedAt:    time.Now(),
	}
	if err := r.AuditLogs().Create(ctx, log); err != nil {
		return dbError("Error al registrar la auditoría", err)
	}
	return nil
}

// 通知を1件作って、そのイベントも積む
func notify(ctx context.Context, r repo.TxRepos, n model.Notification) (model.Notification, error) {
	created, err := r.Notifications().Create(ctx, n)
	if err != nil {
		return model.Notification{}, dbError("Error al crear la notificación", err)
	}
	if err := emit(ctx, r, model.TopicNotifications, model.OperationInsert, created.ID, created.UserID, created); err != nil {
		return model.Notification{}, err
	}
	return created, nil
}

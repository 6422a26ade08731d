package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
	recentNotificationWindow = 24 * time.Hour
)

type NotificationUsecase struct {
	tx            repo.TransactionManager
	notifications repo.NotificationRepository
	users         repo.UserRepository
}

func NewNotificationUsecase(tx repo.TransactionManager, notifications repo.NotificationRepository, users repo.UserRepository) *NotificationUsecase {
	return &NotificationUsecase{tx: tx, notifications: notifications, users: users}
}

type ListNotificationsInput struct {
	Limit      int
	Type       string
	RecentOnly bool
	UnreadOnly bool
}

type SendNotificationInput struct {
	UserID    int64  `json:"user_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	RelatedID *int64 `json:"related_id"`
}

var notificationTypes = map[model.NotificationType]bool{
	model.NotificationOrderConfirmed:       true,
	model.NotificationOrderPreparing:       true,
	model.NotificationOrderOnTheWay:        true,
	model.NotificationOrderCompleted:       true,
	model.NotificationOrderCancelled:       true,
	model.NotificationReservationConfirmed: true,
	model.NotificationReservationPreparing: true,
	model.NotificationReservationOnTheWay:  true,
	model.NotificationReservationCompleted: true,
	model.NotificationReservationCancelled: true,
	model.NotificationGeneral:              true,
}

// 新しい順。既定20件、最大100件
func (u *NotificationUsecase) List(ctx context.Context, userID int64, in ListNotificationsInput) ([]model.Notification, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if in.Limit <= 0 {
		in.Limit = defaultNotificationLimit
	}
	if in.Limit > maxNotificationLimit {
		in.Limit = maxNotificationLimit
	}
	if in.Type != "" && !notificationTypes[model.NotificationType(in.Type)] {
		return nil, NewHTTPError(http.StatusBadRequest, "Tipo de notificación inválido")
	}

	f := repo.NotificationFilter{Limit: in.Limit, Type: in.Type, UnreadOnly: in.UnreadOnly}
	if in.RecentOnly {
		since := time.Now().Add(-recentNotificationWindow)
		f.Since = &since
	}

	list, err := u.notifications.ListByUserID(ctx, userID, f)
	if err != nil {
		return nil, dbError("Error al obtener las notificaciones", err)
	}
	return list, nil
}

func (u *NotificationUsecase) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	n, err := u.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, dbError("Error al contar las notificaciones", err)
	}
	return n, nil
}

func (u *NotificationUsecase) MarkRead(ctx context.Context, userID int64, notificationID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if notificationID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "ID inválido")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := findOwnedNotification(ctx, r, userID, notificationID)
		if err != nil {
			return err
		}
		if n.IsRead {
			return nil
		}
		if err := r.Notifications().MarkRead(ctx, n.ID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "Notificación no encontrada")
			}
			return dbError("Error al marcar la notificación como leída", err)
		}
		n.IsRead = true
		return emit(ctx, r, model.TopicNotifications, model.OperationUpdate, n.ID, userID, n)
	})
}

// 既読にした件数を返す
func (u *NotificationUsecase) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}

	var updated int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		updated, err = r.Notifications().MarkAllRead(ctx, userID)
		if err != nil {
			return dbError("Error al marcar las notificaciones como leídas", err)
		}
		if updated == 0 {
			return nil
		}
		return emit(ctx, r, model.TopicNotifications, model.OperationUpdate, 0, userID, map[string]any{
			"user_id":  userID,
			"all_read": true,
			"updated":  updated,
		})
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (u *NotificationUsecase) Delete(ctx context.Context, userID int64, notificationID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if notificationID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "ID inválido")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := findOwnedNotification(ctx, r, userID, notificationID)
		if err != nil {
			return err
		}
		if err := r.Notifications().Delete(ctx, n.ID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "Notificación no encontrada")
			}
			return dbError("Error al eliminar la notificación", err)
		}
		return emit(ctx, r, model.TopicNotifications, model.OperationDelete, n.ID, userID, map[string]any{"id": n.ID})
	})
}

// 管理者からの直接のお知らせ。typeの既定はgeneral
func (u *NotificationUsecase) Send(ctx context.Context, actorAdminUserID int64, in SendNotificationInput) (model.Notification, error) {
	if actorAdminUserID <= 0 {
		return model.Notification{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if in.UserID <= 0 {
		return model.Notification{}, NewHTTPError(http.StatusBadRequest, "user_id inválido")
	}
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if title == "" || len(title) > 255 {
		return model.Notification{}, NewHTTPError(http.StatusBadRequest, "Título inválido")
	}
	if message == "" || len(message) > 2000 {
		return model.Notification{}, NewHTTPError(http.StatusBadRequest, "Mensaje inválido")
	}
	typ := model.NotificationType(strings.TrimSpace(in.Type))
	if typ == "" {
		typ = model.NotificationGeneral
	}
	if !notificationTypes[typ] {
		return model.Notification{}, NewHTTPError(http.StatusBadRequest, "Tipo de notificación inválido")
	}

	target, err := u.users.FindByID(ctx, in.UserID)
	if err != nil {
		return model.Notification{}, dbError("Error al obtener el usuario", err)
	}
	if target == nil {
		return model.Notification{}, NewHTTPError(http.StatusNotFound, "Usuario no encontrado")
	}

	var out model.Notification
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		created, err := notify(ctx, r, model.Notification{
			UserID:    target.ID,
			Title:     title,
			Message:   message,
			Type:      typ,
			RelatedID: in.RelatedID,
		})
		if err != nil {
			return err
		}
		out = created
		return audit(ctx, r, actorAdminUserID, model.AuditActionSendNotification, model.AuditResourceNotification, created.ID,
			nil, map[string]any{"user_id": created.UserID, "type": created.Type, "title": created.Title})
	})
	if err != nil {
		return model.Notification{}, err
	}
	return out, nil
}

// 他人の通知は存在しない扱い
func findOwnedNotification(ctx context.Context, r repo.TxRepos, userID, notificationID int64) (model.Notification, error) {
	n, err := r.Notifications().FindByID(ctx, notificationID)
	if err == repo.ErrNotFound || (err == nil && n.UserID != userID) {
		return model.Notification{}, NewHTTPError(http.StatusNotFound, "Notificación no encontrada")
	}
	if err != nil {
		return model.Notification{}, dbError("Error al obtener la notificación", err)
	}
	return n, nil
}

package usecase

import (
	"context"
	"fmt"
	"net/http"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

// 予約グループの状態変更。tx内で呼ぶ
// 戻り値の行はキャッシュ無効化に使う
func setReservationGroupStatus(
	ctx context.Context,
	r repo.TxRepos,
	actorID int64,
	memberID int64,
	newStatus model.ReservationStatus,
	guard func(model.Reservation) error,
) ([]model.Reservation, error) {
	target, err := r.Reservations().FindByID(ctx, memberID)
	if err == repo.ErrNotFound {
		return nil, NewHTTPError(http.StatusNotFound, "Reserva no encontrada")
	}
	if err != nil {
		return nil, dbError("Error al obtener la reserva", err)
	}
	if guard != nil {
		if err := guard(target); err != nil {
			return nil, err
		}
	}

	key := target.Key()

	// 同じステータスの再送は冪等。書き込みも通知もしない
	if target.Status == newStatus {
		rows, err := r.Reservations().ListByKey(ctx, key)
		if err != nil {
			return nil, dbError("Error al obtener la reserva", err)
		}
		return rows, nil
	}
	if !model.CanTransitionReservation(target.Status, newStatus) {
		return nil, NewHTTPError(http.StatusConflict,
			fmt.Sprintf("No se puede cambiar la reserva de %s a %s", target.Status, newStatus))
	}

	// グループ全行を1文で更新
	affected, err := r.Reservations().UpdateStatusByKey(ctx, key, newStatus)
	if err != nil {
		return nil, dbError("Error al actualizar la reserva", err)
	}
	if affected == 0 {
		return nil, NewHTTPError(http.StatusNotFound, "Reserva no encontrada")
	}

	rows, err := r.Reservations().ListByKey(ctx, key)
	if err != nil {
		return nil, dbError("Error al obtener la reserva", err)
	}
	if len(rows) == 0 {
		return nil, NewHTTPError(http.StatusNotFound, "Reserva no encontrada")
	}
	rep := rows[0]

	// 通知はグループで1件。related_idは先頭行
	if n, ok := reservationStatusNotice(newStatus, reservationProductNames(rows), key.Date, key.Time); ok {
		related := rep.ID
		if _, err := notify(ctx, r, model.Notification{
			UserID:    key.CustomerID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			RelatedID: &related,
		}); err != nil {
			return nil, err
		}
	}

	if err := audit(ctx, r, actorID, model.AuditActionUpdateReservationStatus, model.AuditResourceReservation, rep.ID,
		map[string]any{"status": target.Status, "rows": affected},
		map[string]any{"status": newStatus, "rows": affected}); err != nil {
		return nil, err
	}
	if err := emit(ctx, r, model.TopicReservations, model.OperationUpdate, rep.ID, key.CustomerID, reservationEvent(key, newStatus, rows)); err != nil {
		return nil, err
	}

	return rows, nil
}

// outboxに載せる予約グループの要約
func reservationEvent(key model.ReservationKey, status model.ReservationStatus, rows []model.Reservation) map[string]any {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return map[string]any{
		"customer_id":      key.CustomerID,
		"reservation_date": key.Date,
		"reservation_time": key.Time,
		"status":           status,
		"reservation_ids":  ids,
	}
}

// 触った商品・日付の空き枠キャッシュを捨てる
func invalidateSlots(ctx context.Context, cache KeyValueCache, rows []model.Reservation) {
	seen := make(map[string]bool)
	for _, row := range rows {
		k := slotCacheKey(row.ProductID, row.ReservationDate.Format(model.DateLayout))
		if seen[k] {
			continue
		}
		seen[k] = true
		_ = cache.DeletePrefix(ctx, k)
	}
}

package usecase

import (
	"fmt"
	"strings"

	"bakery/internal/domain/model"
)

type notice struct {
	Title   string
	Message string
	Type    model.NotificationType
}

// 注文の通知では商品名は2つまで
func summarizeProductNames(names []string) string {
	names = distinctNames(names)
	switch {
	case len(names) == 0:
		return "tu pedido"
	case len(names) <= 2:
		return strings.Join(names, ", ")
	default:
		return strings.Join(names[:2], ", ") + "..."
	}
}

// 出現順のまま重複と空文字を落とす
func distinctNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// pendingへの変更は通知しない
func orderStatusNotice(status model.OrderStatus, productNames []string) (notice, bool) {
	names := summarizeProductNames(productNames)
	switch status {
	case model.OrderStatusConfirmed:
		return notice{
			Title:   "Pedido confirmado",
			Message: fmt.Sprintf("Tu pedido de %s ha sido confirmado y pronto comenzaremos a prepararlo.", names),
			Type:    model.NotificationOrderConfirmed,
		}, true
	case model.OrderStatusPreparing:
		return notice{
			Title:   "Pedido en preparación",
			Message: fmt.Sprintf("Estamos preparando tu pedido de %s.", names),
			Type:    model.NotificationOrderPreparing,
		}, true
	case model.OrderStatusOnTheWay:
		return notice{
			Title:   "Pedido en camino",
			Message: fmt.Sprintf("Tu pedido de %s está en camino.", names),
			Type:    model.NotificationOrderOnTheWay,
		}, true
	case model.OrderStatusCompleted:
		return notice{
			Title:   "Pedido entregado",
			Message: fmt.Sprintf("Tu pedido de %s ha sido entregado. ¡Gracias por tu compra!", names),
			Type:    model.NotificationOrderCompleted,
		}, true
	case model.OrderStatusCancelled:
		return notice{
			Title:   "Pedido cancelado",
			Message: fmt.Sprintf("Tu pedido de %s ha sido cancelado.", names),
			Type:    model.NotificationOrderCancelled,
		}, true
	}
	return notice{}, false
}

// 予約は商品名を全部並べる。no_showは通知しない
func reservationStatusNotice(status model.ReservationStatus, productNames []string, date, at string) (notice, bool) {
	names := strings.Join(distinctNames(productNames), ", ")
	if names == "" {
		names = "tu reserva"
	}
	switch status {
	case model.ReservationStatusConfirmed:
		return notice{
			Title:   "Reservación confirmada",
			Message: fmt.Sprintf("Tu reservación de %s para el %s a las %s ha sido confirmada.", names, date, at),
			Type:    model.NotificationReservationConfirmed,
		}, true
	case model.ReservationStatusPreparing:
		return notice{
			Title:   "Reservación en preparación",
			Message: fmt.Sprintf("Estamos preparando tu reservación de %s.", names),
			Type:    model.NotificationReservationPreparing,
		}, true
	case model.ReservationStatusOnTheWay:
		return notice{
			Title:   "Reservación en camino",
			Message: fmt.Sprintf("Tu reservación de %s está en camino.", names),
			Type:    model.NotificationReservationOnTheWay,
		}, true
	case model.ReservationStatusCompleted:
		return notice{
			Title:   "Reservación completada",
			Message: fmt.Sprintf("Tu reservación de %s ha sido completada. ¡Gracias por elegirnos!", names),
			Type:    model.NotificationReservationCompleted,
		}, true
	case model.ReservationStatusCancelled:
		return notice{
			Title:   "Reservación cancelada",
			Message: fmt.Sprintf("Tu reservación de %s para el %s a las %s ha sido cancelada.", names, date, at),
			Type:    model.NotificationReservationCancelled,
		}, true
	}
	return notice{}, false
}

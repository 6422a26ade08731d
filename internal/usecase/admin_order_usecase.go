package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"github.com/shopspring/decimal"
)

type AdminOrderUsecase struct {
	tx repo.TransactionManager
}

func NewAdminOrderUsecase(tx repo.TransactionManager) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx}
}

type AdminUpdateOrderStatusInput struct {
	Status string `json:"status"`
}

type AdminUpdatePaymentStatusInput struct {
	PaymentStatus string `json:"payment_status"`
}

type OrderStats struct {
	TotalOrders   int64                       `json:"total_orders"`
	ByStatus      map[model.OrderStatus]int64 `json:"by_status"`
	Revenue       decimal.Decimal             `json:"revenue"`
	AverageTicket decimal.Decimal             `json:"average_ticket"`
	OrdersToday   int64                       `json:"orders_today"`
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "Página inválida")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "Límite inválido")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "Estado inválido")
	}
	if f.PaymentStatus != "" && !model.PaymentStatus(f.PaymentStatus).Valid() {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "Estado de pago inválido")
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return dbError("Error al obtener los pedidos", err)
		}

		out = OrderListOutput{Items: make([]OrderOutput, 0, len(orders)), Total: total, Page: f.Page, Limit: f.Limit}
		for _, o := range orders {
			out.Items = append(out.Items, toOrderOutput(o))
		}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "ID inválido")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
		}
		if err != nil {
			return dbError("Error al obtener el pedido", err)
		}
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ステータス更新。通知・監査・イベントも同じtx
func (u *AdminOrderUsecase) SetOrderStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "ID inválido")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "Estado inválido")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
		}
		if err != nil {
			return dbError("Error al obtener el pedido", err)
		}

		// 同じステータスの再送は冪等。書き込みも通知もしない
		if o.Status == newStatus {
			out = toOrderOutput(o)
			return nil
		}
		if !model.CanTransitionOrder(o.Status, newStatus) {
			return NewHTTPError(http.StatusConflict,
				fmt.Sprintf("No se puede cambiar el pedido de %s a %s", o.Status, newStatus))
		}

		before := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
			}
			return dbError("Error al actualizar el pedido", err)
		}
		o.Status = newStatus
		o.UpdatedAt = time.Now()

		// 通知はお客様に1件だけ
		if n, ok := orderStatusNotice(newStatus, orderProductNames(o)); ok {
			related := o.ID
			if _, err := notify(ctx, r, model.Notification{
				UserID:    o.UserID,
				Title:     n.Title,
				Message:   n.Message,
				Type:      n.Type,
				RelatedID: &related,
			}); err != nil {
				return err
			}
		}

		if err := audit(ctx, r, actorAdminUserID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
			map[string]any{"status": before}, map[string]any{"status": newStatus}); err != nil {
			return err
		}
		if err := emit(ctx, r, model.TopicOrders, model.OperationUpdate, o.ID, o.UserID, orderEvent(o)); err != nil {
			return err
		}

		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 支払いステータスは通知しない。refundedはpaidからだけ
func (u *AdminOrderUsecase) SetPaymentStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdatePaymentStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "ID inválido")
	}

	newStatus := model.PaymentStatus(strings.TrimSpace(in.PaymentStatus))
	if !newStatus.Valid() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "Estado de pago inválido")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
		}
		if err != nil {
			return dbError("Error al obtener el pedido", err)
		}

		if o.PaymentStatus == newStatus {
			out = toOrderOutput(o)
			return nil
		}
		if newStatus == model.PaymentStatusRefunded && o.PaymentStatus != model.PaymentStatusPaid {
			return NewHTTPError(http.StatusConflict, "Solo se puede reembolsar un pedido pagado")
		}

		before := o.PaymentStatus
		if err := r.Orders().UpdatePaymentStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
			}
			return dbError("Error al actualizar el estado de pago", err)
		}
		o.PaymentStatus = newStatus
		o.UpdatedAt = time.Now()

		if err := audit(ctx, r, actorAdminUserID, model.AuditActionUpdatePaymentStatus, model.AuditResourceOrder, orderID,
			map[string]any{"payment_status": before}, map[string]any{"payment_status": newStatus}); err != nil {
			return err
		}
		if err := emit(ctx, r, model.TopicOrders, model.OperationUpdate, o.ID, o.UserID, orderEvent(o)); err != nil {
			return err
		}

		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 売上は完了した注文だけ
func (u *AdminOrderUsecase) Stats(ctx context.Context, from, to *time.Time) (OrderStats, error) {
	var out OrderStats

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		counts, err := r.Orders().CountByStatus(ctx, from, to)
		if err != nil {
			return dbError("Error al obtener las estadísticas", err)
		}

		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		today, err := r.Orders().CountByStatus(ctx, &startOfDay, nil)
		if err != nil {
			return dbError("Error al obtener las estadísticas", err)
		}

		out = BuildOrderStats(counts, today)
		return nil
	})
	if err != nil {
		return OrderStats{}, err
	}
	return out, nil
}

func BuildOrderStats(counts, today []repo.OrderStatusCount) OrderStats {
	out := OrderStats{
		ByStatus:      make(map[model.OrderStatus]int64),
		Revenue:       decimal.Zero,
		AverageTicket: decimal.Zero,
	}
	for _, c := range counts {
		out.ByStatus[c.Status] += c.Count
		out.TotalOrders += c.Count
		if c.Status == model.OrderStatusCompleted {
			out.Revenue = out.Revenue.Add(c.Total)
		}
	}
	if completed := out.ByStatus[model.OrderStatusCompleted]; completed > 0 {
		out.AverageTicket = out.Revenue.DivRound(decimal.NewFromInt(completed), 2)
	}
	for _, c := range today {
		out.OrdersToday += c.Count
	}
	return out
}

// 期間パラメータ。日付だけならその日の0時
func ParseDateParam(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(model.DateLayout, s, time.Local)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "Fecha inválida: "+s)
	}
	return &t, nil
}

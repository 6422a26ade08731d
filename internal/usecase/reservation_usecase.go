package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	maxReservationItems    = 20
	maxReservationQuantity = 100
)

// お客様側の予約（空き枠・予約作成・自分の予約・キャンセル）
type ReservationUsecase struct {
	tx           repo.TransactionManager
	reservations repo.ReservationRepository
	products     repo.ProductRepository
	cache        KeyValueCache
	slotTTL      time.Duration
	now          func() time.Time
}

func NewReservationUsecase(
	tx repo.TransactionManager,
	reservations repo.ReservationRepository,
	products repo.ProductRepository,
	cache KeyValueCache,
	slotTTL time.Duration,
) *ReservationUsecase {
	return &ReservationUsecase{
		tx:           tx,
		reservations: reservations,
		products:     products,
		cache:        cache,
		slotTTL:      slotTTL,
		now:          time.Now,
	}
}

type SlotsOutput struct {
	ProductID int64    `json:"product_id"`
	Date      string   `json:"date"`
	Slots     []string `json:"slots"`
}

type ReservationItemInput struct {
	ProductID       int64  `json:"product_id"`
	SizeID          *int64 `json:"size_id"`
	Quantity        int64  `json:"quantity"`
	SpecialRequests string `json:"special_requests"`
}

type CreateReservationInput struct {
	Date  string                 `json:"reservation_date"`
	Time  string                 `json:"reservation_time"`
	Items []ReservationItemInput `json:"items"`
}

func parseReservationDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, NewHTTPError(http.StatusBadRequest, "Fecha inválida")
	}
	return d, nil
}

func isPastDate(date string, now time.Time) bool {
	return date < now.Format(model.DateLayout)
}

// 当日なら開始時刻を過ぎた枠を落とす
func dropStartedSlots(slots []string, date string, now time.Time) []string {
	if date != now.Format(model.DateLayout) {
		return slots
	}
	current := now.Format("15:04")
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if s > current {
			out = append(out, s)
		}
	}
	return out
}

// 空き枠。Redisに短時間キャッシュする
func (u *ReservationUsecase) GetAvailableSlots(ctx context.Context, productID int64, date string) (SlotsOutput, error) {
	if productID <= 0 {
		return SlotsOutput{}, NewHTTPError(http.StatusBadRequest, "product_id inválido")
	}
	d, err := parseReservationDate(date)
	if err != nil {
		return SlotsOutput{}, err
	}
	date = d.Format(model.DateLayout)

	now := u.now()
	out := SlotsOutput{ProductID: productID, Date: date, Slots: []string{}}
	if isPastDate(date, now) {
		return out, nil
	}

	// キャッシュは1日分の空きを持つ。過ぎた枠は毎回落とす
	key := slotCacheKey(productID, date)
	if b, ok := u.cache.Get(ctx, key); ok {
		var cached []string
		if json.Unmarshal(b, &cached) == nil {
			out.Slots = dropStartedSlots(cached, date, now)
			return out, nil
		}
	}

	booked, err := u.reservations.BookedTimes(ctx, productID, date, slotBlockingStatuses)
	if err != nil {
		return SlotsOutput{}, dbError("Error al obtener los horarios disponibles", err)
	}
	free := AvailableSlots(booked)
	if b, err := json.Marshal(free); err == nil {
		_ = u.cache.Set(ctx, key, b, u.slotTTL)
	}
	out.Slots = dropStartedSlots(free, date, now)
	return out, nil
}

func validateReservationInput(in CreateReservationInput, now time.Time) (time.Time, error) {
	d, err := parseReservationDate(in.Date)
	if err != nil {
		return time.Time{}, err
	}
	date := d.Format(model.DateLayout)
	if isPastDate(date, now) {
		return time.Time{}, NewHTTPError(http.StatusBadRequest, "No se puede reservar en una fecha pasada")
	}
	at := strings.TrimSpace(in.Time)
	if !isGridSlot(at) {
		return time.Time{}, NewHTTPError(http.StatusBadRequest, "Horario inválido")
	}
	if len(dropStartedSlots([]string{at}, date, now)) == 0 {
		return time.Time{}, NewHTTPError(http.StatusBadRequest, "Ese horario ya pasó")
	}
	if len(in.Items) == 0 {
		return time.Time{}, NewHTTPError(http.StatusBadRequest, "La reserva debe incluir al menos un producto")
	}
	if len(in.Items) > maxReservationItems {
		return time.Time{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Máximo %d productos por reserva", maxReservationItems))
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 {
			return time.Time{}, NewHTTPError(http.StatusBadRequest, "product_id inválido")
		}
		if it.Quantity < 1 || it.Quantity > maxReservationQuantity {
			return time.Time{}, NewHTTPError(http.StatusBadRequest, "Cantidad inválida")
		}
		if len(it.SpecialRequests) > 500 {
			return time.Time{}, NewHTTPError(http.StatusBadRequest, "Las indicaciones son demasiado largas")
		}
	}
	return d, nil
}

// 1回の予約で選んだ商品ごとに1行。全部pendingで同じtxに入れる
func (u *ReservationUsecase) CreateReservation(ctx context.Context, userID int64, in CreateReservationInput) (ReservationGroup, error) {
	if userID <= 0 {
		return ReservationGroup{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	d, err := validateReservationInput(in, u.now())
	if err != nil {
		return ReservationGroup{}, err
	}

	key := model.ReservationKey{CustomerID: userID, Date: d.Format(model.DateLayout), Time: strings.TrimSpace(in.Time)}

	var created []model.Reservation

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		exists, err := r.Reservations().ExistsForCustomerAt(ctx, key, activeReservationStatuses)
		if err != nil {
			return dbError("Error al verificar la reserva", err)
		}
		if exists {
			return NewHTTPError(http.StatusConflict, "Ya tienes una reserva para esa fecha y hora")
		}

		rows := make([]model.Reservation, 0, len(in.Items))
		checked := make(map[int64]bool)
		for _, it := range in.Items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if err == repo.ErrNotFound || (err == nil && !p.IsActive) {
				return NewHTTPError(http.StatusBadRequest, "Producto no disponible")
			}
			if err != nil {
				return dbError("Error al obtener el producto", err)
			}

			size, err := resolveProductSize(ctx, r.Products(), p, it.SizeID)
			if err != nil {
				return err
			}

			if !checked[p.ID] {
				booked, err := r.Reservations().BookedTimes(ctx, p.ID, key.Date, slotBlockingStatuses)
				if err != nil {
					return dbError("Error al obtener los horarios disponibles", err)
				}
				for _, b := range booked {
					if b == key.Time {
						return NewHTTPError(http.StatusConflict,
							fmt.Sprintf("El horario %s ya no está disponible para %s", key.Time, p.Name))
					}
				}
				checked[p.ID] = true
			}

			product := p
			rows = append(rows, model.Reservation{
				UserID:          userID,
				ProductID:       p.ID,
				SizeID:          it.SizeID,
				ReservationDate: d,
				ReservationTime: key.Time,
				Quantity:        it.Quantity,
				SpecialRequests: strings.TrimSpace(it.SpecialRequests),
				Status:          model.ReservationStatusPending,
				TotalAmount:     p.PriceFor(size).Mul(decimal.NewFromInt(it.Quantity)),
				Product:         &product,
				Size:            size,
			})
		}

		created, err = r.Reservations().CreateBulk(ctx, rows)
		if err != nil {
			return dbError("Error al crear la reserva", err)
		}
		for i := range created {
			created[i].Product = rows[i].Product
			created[i].Size = rows[i].Size
		}

		return emit(ctx, r, model.TopicReservations, model.OperationInsert, created[0].ID, userID,
			reservationEvent(key, model.ReservationStatusPending, created))
	})
	if err != nil {
		return ReservationGroup{}, err
	}

	invalidateSlots(ctx, u.cache, created)
	return GroupReservations(created)[0], nil
}

func (u *ReservationUsecase) ListMyReservations(ctx context.Context, userID int64) ([]ReservationGroup, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}

	rows, err := u.reservations.List(ctx, repo.ReservationListFilter{CustomerID: &userID, Sort: "desc"})
	if err != nil {
		return nil, dbError("Error al obtener las reservas", err)
	}
	return GroupReservations(rows), nil
}

// お客様はpending/confirmedのうちだけキャンセルできる
func (u *ReservationUsecase) CancelMyReservationGroup(ctx context.Context, userID int64, reservationID int64) (ReservationGroup, error) {
	if userID <= 0 {
		return ReservationGroup{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if reservationID <= 0 {
		return ReservationGroup{}, NewHTTPError(http.StatusBadRequest, "ID inválido")
	}

	guard := func(target model.Reservation) error {
		if target.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "Reserva no encontrada")
		}
		if target.Status != model.ReservationStatusPending && target.Status != model.ReservationStatusConfirmed {
			return NewHTTPError(http.StatusConflict, "La reserva ya no se puede cancelar")
		}
		return nil
	}

	var rows []model.Reservation
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		rows, err = setReservationGroupStatus(ctx, r, userID, reservationID, model.ReservationStatusCancelled, guard)
		return err
	})
	if err != nil {
		return ReservationGroup{}, err
	}
	if len(rows) == 0 {
		return ReservationGroup{}, NewHTTPError(http.StatusNotFound, "Reserva no encontrada")
	}

	invalidateSlots(ctx, u.cache, rows)
	return GroupReservations(rows)[0], nil
}

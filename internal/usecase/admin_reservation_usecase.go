package usecase

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

// レポートの最大日数
const maxAttendanceRangeDays = 366

type AdminReservationUsecase struct {
	tx           repo.TransactionManager
	reservations repo.ReservationRepository
	cache        KeyValueCache
}

func NewAdminReservationUsecase(tx repo.TransactionManager, reservations repo.ReservationRepository, cache KeyValueCache) *AdminReservationUsecase {
	return &AdminReservationUsecase{tx: tx, reservations: reservations, cache: cache}
}

type AdminReservationListInput struct {
	Page       int
	Limit      int
	Status     string
	CustomerID *int64
	From       *time.Time
	To         *time.Time
	Sort       string
}

type ReservationGroupListOutput struct {
	Items []ReservationGroup `json:"items"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type AdminUpdateReservationStatusInput struct {
	Status string `json:"status"`
}

type AttendanceDay struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Attended  int    `json:"attended"`
	NoShow    int    `json:"no_show"`
	Cancelled int    `json:"cancelled"`
	Upcoming  int    `json:"upcoming"`
}

type AttendanceReport struct {
	From           string             `json:"from"`
	To             string             `json:"to"`
	TotalGroups    int                `json:"total_groups"`
	Attended       int                `json:"attended"`
	NoShow         int                `json:"no_show"`
	Cancelled      int                `json:"cancelled"`
	Upcoming       int                `json:"upcoming"`
	AttendanceRate float64            `json:"attendance_rate"`
	Days           []AttendanceDay    `json:"days"`
	Groups         []ReservationGroup `json:"groups"`
}

// ページングはグループ単位
func (u *AdminReservationUsecase) List(ctx context.Context, in AdminReservationListInput) (ReservationGroupListOutput, error) {
	if in.Page < 1 {
		return ReservationGroupListOutput{}, NewHTTPError(http.StatusBadRequest, "Página inválida")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ReservationGroupListOutput{}, NewHTTPError(http.StatusBadRequest, "Límite inválido")
	}
	if in.Status != "" && !model.ReservationStatus(in.Status).Valid() {
		return ReservationGroupListOutput{}, NewHTTPError(http.StatusBadRequest, "Estado inválido")
	}
	switch in.Sort {
	case "", "asc", "desc":
	default:
		return ReservationGroupListOutput{}, NewHTTPError(http.StatusBadRequest, "Orden inválido")
	}

	rows, err := u.reservations.List(ctx, repo.ReservationListFilter{
		Status:     in.Status,
		CustomerID: in.CustomerID,
		From:       in.From,
		To:         in.To,
		Sort:       in.Sort,
	})
	if err != nil {
		return ReservationGroupListOutput{}, dbError("Error al obtener las reservas", err)
	}

	groups := GroupReservations(rows)
	start := (in.Page - 1) * in.Limit
	if start > len(groups) {
		start = len(groups)
	}
	end := start + in.Limit
	if end > len(groups) {
		end = len(groups)
	}

	return ReservationGroupListOutput{
		Items: groups[start:end],
		Total: len(groups),
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *AdminReservationUsecase) SetGroupStatus(ctx context.Context, actorAdminUserID int64, reservationID int64, in AdminUpdateReservationStatusInput) (ReservationGroup, error) {
	if actorAdminUserID <= 0 {
		return ReservationGroup{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if reservationID <= 0 {
		return ReservationGroup{}, NewHTTPError(http.StatusBadRequest, "ID inválido")
	}
	newStatus := model.ReservationStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return ReservationGroup{}, NewHTTPError(http.StatusBadRequest, "Estado inválido")
	}

	var rows []model.Reservation
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		rows, err = setReservationGroupStatus(ctx, r, actorAdminUserID, reservationID, newStatus, nil)
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

// グループ全行を削除。消した行数を返す
func (u *AdminReservationUsecase) DeleteGroup(ctx context.Context, actorAdminUserID int64, reservationID int64) (int64, error) {
	if actorAdminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if reservationID <= 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "ID inválido")
	}

	var (
		rows    []model.Reservation
		deleted int64
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		target, err := r.Reservations().FindByID(ctx, reservationID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "Reserva no encontrada")
		}
		if err != nil {
			return dbError("Error al obtener la reserva", err)
		}
		key := target.Key()

		rows, err = r.Reservations().ListByKey(ctx, key)
		if err != nil {
			return dbError("Error al obtener la reserva", err)
		}

		deleted, err = r.Reservations().DeleteByKey(ctx, key)
		if err != nil {
			return dbError("Error al eliminar la reserva", err)
		}
		if deleted == 0 {
			return NewHTTPError(http.StatusNotFound, "Reserva no encontrada")
		}

		groupID := target.ID
		if len(rows) > 0 {
			groupID = rows[0].ID
		}
		if err := audit(ctx, r, actorAdminUserID, model.AuditActionDeleteReservationGroup, model.AuditResourceReservation, groupID,
			reservationEvent(key, target.Status, rows), map[string]any{"deleted": deleted}); err != nil {
			return err
		}
		return emit(ctx, r, model.TopicReservations, model.OperationDelete, groupID, key.CustomerID,
			reservationEvent(key, target.Status, rows))
	})
	if err != nil {
		return 0, err
	}

	invalidateSlots(ctx, u.cache, rows)
	return deleted, nil
}

// 期間の既定は直近30日
func (u *AdminReservationUsecase) AttendanceReport(ctx context.Context, from, to *time.Time) (AttendanceReport, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if to == nil {
		to = &today
	}
	if from == nil {
		f := to.AddDate(0, 0, -30)
		from = &f
	}
	if from.After(*to) {
		return AttendanceReport{}, NewHTTPError(http.StatusBadRequest, "El rango de fechas es inválido")
	}
	if to.Sub(*from) > maxAttendanceRangeDays*24*time.Hour {
		return AttendanceReport{}, NewHTTPError(http.StatusBadRequest, "El rango de fechas es demasiado amplio")
	}

	rows, err := u.reservations.List(ctx, repo.ReservationListFilter{From: from, To: to, Sort: "asc"})
	if err != nil {
		return AttendanceReport{}, dbError("Error al obtener las reservas", err)
	}

	rep := BuildAttendanceReport(GroupReservations(rows))
	rep.From = from.Format(model.DateLayout)
	rep.To = to.Format(model.DateLayout)
	return rep, nil
}

// 出席率 = completed / (completed + no_show)
func BuildAttendanceReport(groups []ReservationGroup) AttendanceReport {
	rep := AttendanceReport{
		Days:   make([]AttendanceDay, 0),
		Groups: groups,
	}
	dayIndex := make(map[string]int)

	for _, g := range groups {
		i, ok := dayIndex[g.ReservationDate]
		if !ok {
			i = len(rep.Days)
			dayIndex[g.ReservationDate] = i
			rep.Days = append(rep.Days, AttendanceDay{Date: g.ReservationDate})
		}
		day := &rep.Days[i]
		day.Total++
		rep.TotalGroups++

		switch g.Status {
		case model.ReservationStatusCompleted:
			day.Attended++
			rep.Attended++
		case model.ReservationStatusNoShow:
			day.NoShow++
			rep.NoShow++
		case model.ReservationStatusCancelled:
			day.Cancelled++
			rep.Cancelled++
		default:
			day.Upcoming++
			rep.Upcoming++
		}
	}

	if denom := rep.Attended + rep.NoShow; denom > 0 {
		rep.AttendanceRate = math.Round(float64(rep.Attended)/float64(denom)*10000) / 10000
	}
	return rep
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"bakery/internal/domain/model"
)

const (
	slotOpen  = 9 * time.Hour
	slotClose = 21 * time.Hour
	slotStep  = 30 * time.Minute
)

// 空き枠はこのステータスの予約で埋まる
var slotBlockingStatuses = []model.ReservationStatus{
	model.ReservationStatusPending,
	model.ReservationStatusConfirmed,
}

// 同じ日時に重ねて予約できないステータス
var activeReservationStatuses = []model.ReservationStatus{
	model.ReservationStatusPending,
	model.ReservationStatusConfirmed,
	model.ReservationStatusPreparing,
	model.ReservationStatusOnTheWay,
}

// usecaseが必要とするキャッシュの約束（cache.Storeが満たす）
type KeyValueCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// 09:00 から 20:30 まで30分刻み
func SlotGrid() []string {
	out := make([]string, 0, int((slotClose-slotOpen)/slotStep))
	for t := slotOpen; t < slotClose; t += slotStep {
		out = append(out, fmt.Sprintf("%02d:%02d", int(t.Hours()), int(t.Minutes())%60))
	}
	return out
}

func isGridSlot(at string) bool {
	for _, s := range SlotGrid() {
		if s == at {
			return true
		}
	}
	return false
}

// 予約済みの時刻を枠から外す。容量は見ない
func AvailableSlots(booked []string) []string {
	taken := make(map[string]bool, len(booked))
	for _, b := range booked {
		taken[b] = true
	}

	out := make([]string, 0)
	for _, s := range SlotGrid() {
		if !taken[s] {
			out = append(out, s)
		}
	}
	return out
}

func slotCacheKey(productID int64, date string) string {
	return fmt.Sprintf("slots:%d:%s", productID, date)
}

package usecase

import (
	"time"

	"bakery/internal/domain/model"

	"github.com/shopspring/decimal"
)

type CustomerSnapshot struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type ReservationGroupItem struct {
	ReservationID   int64           `json:"reservation_id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name"`
	SizeID          *int64          `json:"size_id"`
	SizeName        string          `json:"size_name,omitempty"`
	Quantity        int64           `json:"quantity"`
	SpecialRequests string          `json:"special_requests"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// 同じ (顧客, 日付, 時刻) の予約行をまとめたもの。IDは先頭行のID
type ReservationGroup struct {
	ID                  int64                   `json:"id"`
	CustomerID          int64                   `json:"customer_id"`
	Customer            CustomerSnapshot        `json:"customer"`
	ReservationDate     string                  `json:"reservation_date"`
	ReservationTime     string                  `json:"reservation_time"`
	Status              model.ReservationStatus `json:"status"`
	CreatedAt           time.Time               `json:"created_at"`
	Items               []ReservationGroupItem  `json:"items"`
	TotalAmountCombined decimal.Decimal         `json:"total_amount_combined"`
}

// キーが同じ行をまとめる。グループの並びは最初に出てきた順、グループ内は入力順
func GroupByCompositeKey[T any, K comparable](rows []T, key func(T) K) [][]T {
	index := make(map[K]int)
	groups := make([][]T, 0)
	for _, row := range rows {
		k := key(row)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], row)
	}
	return groups
}

func GroupReservations(rows []model.Reservation) []ReservationGroup {
	grouped := GroupByCompositeKey(rows, func(r model.Reservation) model.ReservationKey {
		return r.Key()
	})

	out := make([]ReservationGroup, 0, len(grouped))
	for _, members := range grouped {
		out = append(out, toReservationGroup(members))
	}
	return out
}

func toReservationGroup(members []model.Reservation) ReservationGroup {
	first := members[0]
	key := first.Key()

	g := ReservationGroup{
		ID:                  first.ID,
		CustomerID:          key.CustomerID,
		Customer:            CustomerSnapshot{ID: key.CustomerID},
		ReservationDate:     key.Date,
		ReservationTime:     key.Time,
		Status:              first.Status,
		CreatedAt:           first.CreatedAt,
		Items:               make([]ReservationGroupItem, 0, len(members)),
		TotalAmountCombined: decimal.Zero,
	}
	if first.Customer != nil {
		g.Customer.FullName = first.Customer.FullName
		g.Customer.Email = first.Customer.Email
		g.Customer.Phone = first.Customer.Phone
	}

	for _, r := range members {
		item := ReservationGroupItem{
			ReservationID:   r.ID,
			ProductID:       r.ProductID,
			SizeID:          r.SizeID,
			Quantity:        r.Quantity,
			SpecialRequests: r.SpecialRequests,
			TotalAmount:     r.TotalAmount,
		}
		if r.Product != nil {
			item.ProductName = r.Product.Name
		}
		if r.Size != nil {
			item.SizeName = r.Size.Name
		}
		g.Items = append(g.Items, item)
		g.TotalAmountCombined = g.TotalAmountCombined.Add(r.TotalAmount)
	}
	return g
}

func reservationProductNames(rows []model.Reservation) []string {
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Product != nil {
			names = append(names, r.Product.Name)
		}
	}
	return names
}

package model_test

import (
	"testing"
	"time"

	"bakery/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrder(t *testing.T) {
	tests := []struct {
		from model.OrderStatus
		to   model.OrderStatus
		want bool
	}{
		{model.OrderStatusPending, model.OrderStatusConfirmed, true},
		{model.OrderStatusConfirmed, model.OrderStatusPreparing, true},
		{model.OrderStatusPreparing, model.OrderStatusOnTheWay, true},
		{model.OrderStatusOnTheWay, model.OrderStatusCompleted, true},
		{model.OrderStatusOnTheWay, model.OrderStatusCancelled, true},
		// 飛び越しや逆戻りはできない
		{model.OrderStatusPending, model.OrderStatusCompleted, false},
		{model.OrderStatusPreparing, model.OrderStatusConfirmed, false},
		{model.OrderStatusCompleted, model.OrderStatusCancelled, false},
		{model.OrderStatusCancelled, model.OrderStatusPending, false},
		{model.OrderStatus("unknown"), model.OrderStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, model.CanTransitionOrder(tt.from, tt.to))
		})
	}
}

func TestCanTransitionReservation(t *testing.T) {
	tests := []struct {
		from model.ReservationStatus
		to   model.ReservationStatus
		want bool
	}{
		{model.ReservationStatusPending, model.ReservationStatusConfirmed, true},
		{model.ReservationStatusPending, model.ReservationStatusNoShow, true},
		{model.ReservationStatusOnTheWay, model.ReservationStatusCompleted, true},
		{model.ReservationStatusConfirmed, model.ReservationStatusCancelled, true},
		{model.ReservationStatusNoShow, model.ReservationStatusConfirmed, false},
		{model.ReservationStatusCompleted, model.ReservationStatusNoShow, false},
		{model.ReservationStatusPending, model.ReservationStatusPreparing, false},
		// 店頭受け取り
		{model.ReservationStatusConfirmed, model.ReservationStatusCompleted, true},
		{model.ReservationStatusPreparing, model.ReservationStatusCompleted, true},
		{model.ReservationStatusPending, model.ReservationStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, model.CanTransitionReservation(tt.from, tt.to))
		})
	}
}

func TestStatus_ValidAndTerminal(t *testing.T) {
	assert.True(t, model.OrderStatusOnTheWay.Valid())
	assert.False(t, model.OrderStatus("no_show").Valid())
	assert.True(t, model.ReservationStatusNoShow.Valid())

	assert.True(t, model.OrderStatusCompleted.Terminal())
	assert.True(t, model.OrderStatusCancelled.Terminal())
	assert.False(t, model.OrderStatusPending.Terminal())
	assert.False(t, model.OrderStatus("bogus").Terminal())

	assert.True(t, model.ReservationStatusNoShow.Terminal())
	assert.False(t, model.ReservationStatusPreparing.Terminal())

	assert.True(t, model.PaymentStatusRefunded.Valid())
	assert.False(t, model.PaymentStatus("partial").Valid())
}

func TestAddress_DeliveryText(t *testing.T) {
	a := model.Address{
		Street:    "Av. Juárez 120",
		District:  " Centro ",
		City:      "Puebla",
		Reference: "Frente al parque",
	}
	assert.Equal(t, "Av. Juárez 120, Centro, Puebla, Ref: Frente al parque", a.DeliveryText())

	// 空の項目は飛ばす
	a = model.Address{Street: "Calle 5", City: "Oaxaca"}
	assert.Equal(t, "Calle 5, Oaxaca", a.DeliveryText())
}

func TestProduct_PriceFor(t *testing.T) {
	p := model.Product{Price: decimal.RequireFromString("25.00")}
	assert.True(t, p.PriceFor(nil).Equal(decimal.RequireFromString("25.00")))

	size := &model.ProductSize{Name: "Grande", Price: decimal.RequireFromString("40.50")}
	assert.True(t, p.PriceFor(size).Equal(decimal.RequireFromString("40.50")))
}

func TestReservation_Key(t *testing.T) {
	r := model.Reservation{
		UserID:          7,
		ReservationDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ReservationTime: "10:30",
	}
	assert.Equal(t, model.ReservationKey{CustomerID: 7, Date: "2026-03-01", Time: "10:30"}, r.Key())
}

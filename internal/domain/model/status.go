package model

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusOnTheWay  OrderStatus = "on_the_way"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 予約は注文と同じステータス + no_show
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusPreparing ReservationStatus = "preparing"
	ReservationStatusOnTheWay  ReservationStatus = "on_the_way"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

var orderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:   {OrderStatusConfirmed: true, OrderStatusCancelled: true},
	OrderStatusConfirmed: {OrderStatusPreparing: true, OrderStatusCancelled: true},
	OrderStatusPreparing: {OrderStatusOnTheWay: true, OrderStatusCancelled: true},
	OrderStatusOnTheWay:  {OrderStatusCompleted: true, OrderStatusCancelled: true},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// 店頭受け取りはon_the_wayを飛ばしてcompletedにできる
var reservationNext = map[ReservationStatus]map[ReservationStatus]bool{
	ReservationStatusPending:   {ReservationStatusConfirmed: true, ReservationStatusCancelled: true, ReservationStatusNoShow: true},
	ReservationStatusConfirmed: {ReservationStatusPreparing: true, ReservationStatusCompleted: true, ReservationStatusCancelled: true, ReservationStatusNoShow: true},
	ReservationStatusPreparing: {ReservationStatusOnTheWay: true, ReservationStatusCompleted: true, ReservationStatusCancelled: true, ReservationStatusNoShow: true},
	ReservationStatusOnTheWay:  {ReservationStatusCompleted: true, ReservationStatusCancelled: true, ReservationStatusNoShow: true},
	ReservationStatusCompleted: {},
	ReservationStatusCancelled: {},
	ReservationStatusNoShow:    {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderNext[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	next, ok := orderNext[s]
	return ok && len(next) == 0
}

func CanTransitionOrder(from, to OrderStatus) bool {
	return orderNext[from][to]
}

func (s ReservationStatus) Valid() bool {
	_, ok := reservationNext[s]
	return ok
}

func (s ReservationStatus) Terminal() bool {
	next, ok := reservationNext[s]
	return ok && len(next) == 0
}

func CanTransitionReservation(from, to ReservationStatus) bool {
	return reservationNext[from][to]
}

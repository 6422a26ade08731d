package model

import "time"

type NotificationType string

const (
	NotificationOrderConfirmed NotificationType = "order_confirmed"
	NotificationOrderPreparing NotificationType = "order_preparing"
	NotificationOrderOnTheWay  NotificationType = "order_on_the_way"
	NotificationOrderCompleted NotificationType = "order_completed"
	NotificationOrderCancelled NotificationType = "order_cancelled"

	NotificationReservationConfirmed NotificationType = "reservation_confirmed"
	NotificationReservationPreparing NotificationType = "reservation_preparing"
	NotificationReservationOnTheWay  NotificationType = "reservation_on_the_way"
	NotificationReservationCompleted NotificationType = "reservation_completed"
	NotificationReservationCancelled NotificationType = "reservation_cancelled"

	//管理者からの直接のお知らせ
	NotificationGeneral NotificationType = "general"
)

// RelatedID は注文ID、または予約グループ先頭行のID
type Notification struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64            `gorm:"not null;index" json:"user_id"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Type      NotificationType `gorm:"type:varchar(50);not null;index" json:"type"`
	RelatedID *int64           `json:"related_id"`
	IsRead    bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time        `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

package model

import (
	"strings"
	"time"
)

// pg_notify のチャンネル名
const OutboxChannel = "outbox_events"

type OutboxTopic string

const (
	TopicOrders        OutboxTopic = "orders"
	TopicReservations  OutboxTopic = "reservations"
	TopicNotifications OutboxTopic = "notifications"
)

type OutboxOperation string

const (
	OperationInsert OutboxOperation = "INSERT"
	OperationUpdate OutboxOperation = "UPDATE"
	OperationDelete OutboxOperation = "DELETE"
)

// 変更と同じトランザクションで書き、dispatcherが後から配信する
type OutboxEvent struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID      string          `gorm:"type:uuid;not null;uniqueIndex" json:"event_id"`
	Topic        OutboxTopic     `gorm:"type:varchar(50);not null;index" json:"topic"`
	Operation    OutboxOperation `gorm:"type:varchar(10);not null" json:"operation"`
	EntityID     int64           `gorm:"not null" json:"entity_id"`
	UserID       int64           `gorm:"not null;index" json:"user_id"`
	Payload      string          `gorm:"type:text;not null" json:"payload"`
	Attempts     int             `gorm:"not null;default:0" json:"attempts"`
	LastError    string          `gorm:"type:text" json:"last_error"`
	// 配信済みのpublisher名（カンマ区切り）。再送は残りの配信先だけ
	DeliveredTo string `gorm:"type:varchar(255);not null;default:''" json:"delivered_to"`
	// nilなら即時。失敗するたびに指数バックオフで先送り
	NextAttemptAt *time.Time `gorm:"index" json:"next_attempt_at"`
	DispatchedAt  *time.Time `gorm:"index" json:"dispatched_at"`
	CreatedAt     time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (e OutboxEvent) DeliveredSet() map[string]bool {
	set := make(map[string]bool)
	for _, name := range strings.Split(e.DeliveredTo, ",") {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = true
		}
	}
	return set
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// 配達予定は作成時刻+1時間で固定
const DeliveryLeadTime = time.Hour

type Order struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64           `gorm:"not null;index" json:"user_id"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus     PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	PaymentMethod     string          `gorm:"type:varchar(50);not null" json:"payment_method"`
	DeliveryAddress   string          `gorm:"type:text;not null" json:"delivery_address"`
	Notes             string          `gorm:"type:text" json:"notes"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	EstimatedDelivery time.Time       `gorm:"not null" json:"estimated_delivery"`
	IdempotencyKey    string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Customer          *User           `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

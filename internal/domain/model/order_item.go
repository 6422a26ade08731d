package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 単価は注文時点のスナップショット
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"not null;index" json:"order_id"`
	ProductID int64           `gorm:"not null;index" json:"product_id"`
	SizeID    *int64          `json:"size_id"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"-"`
	Size      *ProductSize    `gorm:"foreignKey:SizeID" json:"-"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

package model

import "time"

// カートの明細
// 価格は保存しない。表示と注文確定のたびに商品/サイズから引き直す。
type CartItem struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64        `gorm:"not null;index" json:"cart_id"`
	ProductID int64        `gorm:"not null;index" json:"product_id"`
	SizeID    *int64       `gorm:"index" json:"size_id"`
	Quantity  int64        `gorm:"not null" json:"quantity"`
	Product   *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Size      *ProductSize `gorm:"foreignKey:SizeID" json:"size,omitempty"`
	CreatedAt time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

package model

import (
	"strings"
	"time"
)

// 配送先住所
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//自宅、職場など
	Label string `gorm:"type:varchar(50)" json:"label"`

	//受取人
	Recipient string `gorm:"type:varchar(255);not null" json:"recipient"`

	//通り・番地
	Street string `gorm:"type:varchar(255);not null" json:"street"`

	//地区
	District string `gorm:"type:varchar(100);not null" json:"district"`

	City string `gorm:"type:varchar(100);not null" json:"city"`

	//目印など
	Reference string `gorm:"type:varchar(255)" json:"reference"`

	Phone string `gorm:"type:varchar(30)" json:"phone"`

	//このユーザーのデフォルト住所か
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// 注文に保存する配送先の文字列
func (a Address) DeliveryText() string {
	parts := []string{a.Street, a.District, a.City}
	if a.Reference != "" {
		parts = append(parts, "Ref: "+a.Reference)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// 1回の予約で複数商品を頼むと、(user_id, 日付, 時刻) が同じ行が複数できる。
// グループ用のテーブルは持たない。
type Reservation struct {
	ID              int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64             `gorm:"not null;index:idx_reservation_key,priority:1" json:"user_id"`
	ProductID       int64             `gorm:"not null;index" json:"product_id"`
	SizeID          *int64            `json:"size_id"`
	ReservationDate time.Time         `gorm:"type:date;not null;index:idx_reservation_key,priority:2" json:"reservation_date"`
	ReservationTime string            `gorm:"type:varchar(5);not null;index:idx_reservation_key,priority:3" json:"reservation_time"`
	Quantity        int64             `gorm:"not null" json:"quantity"`
	SpecialRequests string            `gorm:"type:text" json:"special_requests"`
	Status          ReservationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount     decimal.Decimal   `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Product         *Product          `gorm:"foreignKey:ProductID" json:"-"`
	Size            *ProductSize      `gorm:"foreignKey:SizeID" json:"-"`
	Customer        *User             `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt       time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 同じ予約グループを表す複合キー
type ReservationKey struct {
	CustomerID int64
	Date       string
	Time       string
}

func (r Reservation) Key() ReservationKey {
	return ReservationKey{
		CustomerID: r.UserID,
		Date:       r.ReservationDate.Format(DateLayout),
		Time:       r.ReservationTime,
	}
}

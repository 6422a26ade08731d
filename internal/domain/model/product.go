package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  *int64          `gorm:"index" json:"category_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	ImageURL    string          `gorm:"type:varchar(500)" json:"image_url"`
	IsActive    bool            `gorm:"not null;default:false" json:"is_active"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Sizes       []ProductSize   `gorm:"foreignKey:ProductID" json:"sizes"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// サイズ違い（小・中・大など）。価格はサイズごと。
type ProductSize struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64           `gorm:"not null;index" json:"product_id"`
	Name      string          `gorm:"type:varchar(100);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// サイズ指定があればサイズの価格、なければ商品の価格
func (p Product) PriceFor(size *ProductSize) decimal.Decimal {
	if size != nil {
		return size.Price
	}
	return p.Price
}

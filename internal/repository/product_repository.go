package repository

import (
	"bakery/internal/domain/model"
	"context"

	"github.com/shopspring/decimal"
)

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
	//管理画面では非公開商品も出す
	IncludeInactive bool
}

// 商品・サイズ・カテゴリの永続化だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error

	FindSize(ctx context.Context, sizeID int64) (model.ProductSize, error)
	CreateSize(ctx context.Context, s model.ProductSize) (model.ProductSize, error)
	UpdateSize(ctx context.Context, s model.ProductSize) error
	DeleteSize(ctx context.Context, sizeID int64) error

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, c model.Category) (model.Category, error)
}

package repository

import (
	"context"

	"bakery/internal/domain/model"
)

// ACTIVEカートはユーザーごとに1つ
type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	MarkCheckedOut(ctx context.Context, cartID int64) error
	// 明細を全部消す
	Clear(ctx context.Context, cartID int64) error
}

package repository

import (
	"bakery/internal/domain/model"
	"context"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//作成後はaddress（IDなどが埋まったもの）を返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	FindByID(ctx context.Context, addressID int64) (model.Address, error)

	//デフォルト住所。なければ ErrNotFound
	FindDefault(ctx context.Context, userID int64) (model.Address, error)

	Update(ctx context.Context, address model.Address) error

	Delete(ctx context.Context, addressID int64) error

	//他の住所のis_defaultを外してから立てる
	SetDefault(ctx context.Context, userID, addressID int64) error
}

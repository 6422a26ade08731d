package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"bakery/internal/domain/model"
	"bakery/internal/repository"
)

// 住所系で存在しないことを表す（Handlerが404に変換する）
var ErrNotFound = errors.New("not found")

type AddressDTO struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Label     string  `json:"label"`
	Recipient string  `json:"recipient"`
	Street    string  `json:"street"`
	District  string  `json:"district"`
	City      string  `json:"city"`
	Reference string  `json:"reference"`
	Phone     string  `json:"phone"`
	IsDefault bool    `json:"is_default"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at,omitempty"`
}

// 作成・更新で同じ形
type AddressRequest struct {
	Label     string `json:"label"`
	Recipient string `json:"recipient"`
	Street    string `json:"street"`
	District  string `json:"district"`
	City      string `json:"city"`
	Reference string `json:"reference"`
	Phone     string `json:"phone"`
}

func (r AddressRequest) valid() bool {
	if strings.TrimSpace(r.Recipient) == "" || strings.TrimSpace(r.Street) == "" ||
		strings.TrimSpace(r.District) == "" || strings.TrimSpace(r.City) == "" {
		return false
	}
	return len(r.Label) <= 50 && len(r.Phone) <= 30 && len(r.Reference) <= 255
}

type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, req AddressRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, ErrUnauthorized
	}

	//入力チェック
	if !req.valid() {
		return AddressDTO{}, ErrValidation
	}

	//最初の住所はデフォルトにする
	existing, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return AddressDTO{}, ErrInternal
	}

	now := time.Now()

	a := model.Address{
		UserID:    userID,
		Label:     strings.TrimSpace(req.Label),
		Recipient: strings.TrimSpace(req.Recipient),
		Street:    strings.TrimSpace(req.Street),
		District:  strings.TrimSpace(req.District),
		City:      strings.TrimSpace(req.City),
		Reference: strings.TrimSpace(req.Reference),
		Phone:     strings.TrimSpace(req.Phone),
		IsDefault: len(existing) == 0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return AddressDTO{}, ErrInternal
	}

	return toAddressDTO(&created), nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, req AddressRequest) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if addressID <= 0 || !req.valid() {
		return ErrValidation
	}

	//所有チェック（本人のみ）
	if _, err := u.checkOwner(ctx, userID, addressID); err != nil {
		return err
	}

	a := model.Address{
		ID:        addressID,
		Label:     strings.TrimSpace(req.Label),
		Recipient: strings.TrimSpace(req.Recipient),
		Street:    strings.TrimSpace(req.Street),
		District:  strings.TrimSpace(req.District),
		City:      strings.TrimSpace(req.City),
		Reference: strings.TrimSpace(req.Reference),
		Phone:     strings.TrimSpace(req.Phone),
		UpdatedAt: time.Now(),
	}

	if err := u.addresses.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	return nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if addressID <= 0 {
		return ErrValidation
	}

	a, err := u.checkOwner(ctx, userID, addressID)
	if err != nil {
		return err
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrConflict
	}

	//デフォルトを消したら残りの先頭に付け替える
	if !a.IsDefault {
		return nil
	}
	rest, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return ErrInternal
	}
	if len(rest) == 0 {
		return nil
	}
	if err := u.addresses.SetDefault(ctx, userID, rest[0].ID); err != nil {
		return ErrInternal
	}
	return nil
}

func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if addressID <= 0 {
		return ErrValidation
	}

	if _, err := u.checkOwner(ctx, userID, addressID); err != nil {
		return err
	}

	//user内でdefaultは1つ
	if err := u.addresses.SetDefault(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	return nil
}

// 他人の住所も404
func (u *AddressUsecase) checkOwner(ctx context.Context, userID, addressID int64) (model.Address, error) {
	a, err := u.addresses.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Address{}, ErrNotFound
		}
		return model.Address{}, ErrInternal
	}
	if a.UserID != userID {
		return model.Address{}, ErrNotFound
	}
	return a, nil
}

func toAddressDTO(a *model.Address) AddressDTO {
	dto := AddressDTO{
		ID:        a.ID,
		UserID:    a.UserID,
		Label:     a.Label,
		Recipient: a.Recipient,
		Street:    a.Street,
		District:  a.District,
		City:      a.City,
		Reference: a.Reference,
		Phone:     a.Phone,
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	t := a.UpdatedAt.Format(time.RFC3339)
	dto.UpdatedAt = &t
	return dto
}

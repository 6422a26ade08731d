package usecase_test

import (
	"context"
	"errors"
	"testing"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validAddress() usecase.AddressRequest {
	return usecase.AddressRequest{
		Label:     "Casa",
		Recipient: " Ana López ",
		Street:    "Av. Juárez 10",
		District:  "Centro",
		City:      "Puebla",
		Phone:     "2221234567",
	}
}

// 最初の住所だけデフォルトになる
func TestAddressUsecase_Create_FirstIsDefault(t *testing.T) {
	tests := []struct {
		name        string
		existing    []model.Address
		wantDefault bool
	}{
		{name: "1件目", existing: []model.Address{}, wantDefault: true},
		{name: "2件目", existing: []model.Address{{ID: 1, UserID: 3, IsDefault: true}}, wantDefault: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addresses := new(AddressRepoMock)
			uc := usecase.NewAddressUsecase(addresses)

			addresses.On("ListByUserID", mock.Anything, int64(3)).Return(tt.existing, nil)
			addresses.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
				return a.UserID == 3 && a.Recipient == "Ana López" && a.IsDefault == tt.wantDefault
			})).Return(model.Address{ID: 7, UserID: 3, Recipient: "Ana López", IsDefault: tt.wantDefault}, nil).Once()

			out, err := uc.Create(context.Background(), 3, validAddress())
			require.NoError(t, err)
			assert.Equal(t, int64(7), out.ID)
			assert.Equal(t, tt.wantDefault, out.IsDefault)
			addresses.AssertExpectations(t)
		})
	}
}

func TestAddressUsecase_Create_Validation(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	req := validAddress()
	req.Street = "  "
	_, err := uc.Create(context.Background(), 3, req)
	assert.ErrorIs(t, err, usecase.ErrValidation)

	_, err = uc.Create(context.Background(), 0, validAddress())
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	addresses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// デフォルトの切り替えは本人の住所だけ
func TestAddressUsecase_SetDefault(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	addresses.On("FindByID", mock.Anything, int64(2)).Return(model.Address{ID: 2, UserID: 3}, nil)
	addresses.On("FindByID", mock.Anything, int64(8)).Return(model.Address{ID: 8, UserID: 4}, nil)
	addresses.On("FindByID", mock.Anything, int64(9)).Return(nil, repo.ErrNotFound)
	addresses.On("SetDefault", mock.Anything, int64(3), int64(2)).Return(nil).Once()

	require.NoError(t, uc.SetDefault(context.Background(), 3, 2))

	assert.ErrorIs(t, uc.SetDefault(context.Background(), 3, 8), usecase.ErrNotFound)
	assert.ErrorIs(t, uc.SetDefault(context.Background(), 3, 9), usecase.ErrNotFound)
	assert.ErrorIs(t, uc.SetDefault(context.Background(), 3, 0), usecase.ErrValidation)

	addresses.AssertNumberOfCalls(t, "SetDefault", 1)
}

// デフォルトを消したら残りの先頭がデフォルトになる
func TestAddressUsecase_Delete_PromotesNextDefault(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	addresses.On("FindByID", mock.Anything, int64(1)).Return(model.Address{ID: 1, UserID: 3, IsDefault: true}, nil)
	addresses.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	addresses.On("ListByUserID", mock.Anything, int64(3)).Return([]model.Address{
		{ID: 4, UserID: 3},
		{ID: 6, UserID: 3},
	}, nil).Once()
	addresses.On("SetDefault", mock.Anything, int64(3), int64(4)).Return(nil).Once()

	require.NoError(t, uc.Delete(context.Background(), 3, 1))
	addresses.AssertExpectations(t)
}

func TestAddressUsecase_Delete_NonDefaultKeepsDefault(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	addresses.On("FindByID", mock.Anything, int64(4)).Return(model.Address{ID: 4, UserID: 3, IsDefault: false}, nil)
	addresses.On("Delete", mock.Anything, int64(4)).Return(nil).Once()

	require.NoError(t, uc.Delete(context.Background(), 3, 4))
	addresses.AssertNotCalled(t, "ListByUserID", mock.Anything, mock.Anything)
	addresses.AssertNotCalled(t, "SetDefault", mock.Anything, mock.Anything, mock.Anything)
}

// 最後の1件なら付け替え先はない
func TestAddressUsecase_Delete_LastAddress(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	addresses.On("FindByID", mock.Anything, int64(1)).Return(model.Address{ID: 1, UserID: 3, IsDefault: true}, nil)
	addresses.On("Delete", mock.Anything, int64(1)).Return(nil)
	addresses.On("ListByUserID", mock.Anything, int64(3)).Return([]model.Address{}, nil)

	require.NoError(t, uc.Delete(context.Background(), 3, 1))
	addresses.AssertNotCalled(t, "SetDefault", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddressUsecase_Delete_Errors(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	addresses.On("FindByID", mock.Anything, int64(8)).Return(model.Address{ID: 8, UserID: 4}, nil)
	addresses.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 3}, nil)
	addresses.On("Delete", mock.Anything, int64(5)).Return(errors.New("foreign key violation"))

	assert.ErrorIs(t, uc.Delete(context.Background(), 3, 8), usecase.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(context.Background(), 3, 5), usecase.ErrConflict)
	addresses.AssertNotCalled(t, "Delete", mock.Anything, int64(8))
}

func TestAddressUsecase_Update_OtherUser(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	addresses.On("FindByID", mock.Anything, int64(8)).Return(model.Address{ID: 8, UserID: 4}, nil)
	addresses.On("FindByID", mock.Anything, int64(2)).Return(model.Address{ID: 2, UserID: 3}, nil)
	addresses.On("Update", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.ID == 2 && a.City == "Puebla"
	})).Return(nil).Once()

	assert.ErrorIs(t, uc.Update(context.Background(), 3, 8, validAddress()), usecase.ErrNotFound)
	require.NoError(t, uc.Update(context.Background(), 3, 2, validAddress()))
	addresses.AssertNumberOfCalls(t, "Update", 1)
}

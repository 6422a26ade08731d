package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Helper: HTTPErrorのステータスとメッセージ
func assertHTTPError(t *testing.T, err error, wantStatus int, wantSubstr string) {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "err=%v is not HTTPError", err)
	assert.Equal(t, wantStatus, he.Status)
	assert.True(t, strings.Contains(he.Message, wantSubstr), "msg=%q want contains %q", he.Message, wantSubstr)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bakeryCart() []model.CartItem {
	sizeID := int64(7)
	return []model.CartItem{
		{
			ID: 1, CartID: 5, ProductID: 1, Quantity: 2,
			Product: &model.Product{ID: 1, Name: "Pan de muerto", Price: dec("25.00"), IsActive: true},
		},
		{
			ID: 2, CartID: 5, ProductID: 2, SizeID: &sizeID, Quantity: 1,
			Product: &model.Product{ID: 2, Name: "Pastel de chocolate", Price: dec("30.00"), IsActive: true},
			Size:    &model.ProductSize{ID: 7, ProductID: 2, Name: "Mediano", Price: dec("40.00")},
		},
	}
}

func TestPriceOrderLines_UsesSizePriceAndSums(t *testing.T) {
	sizeID := int64(7)
	items, total := usecase.PriceOrderLines([]usecase.OrderLine{
		{ProductID: 1, Quantity: 2, UnitPrice: dec("25.00")},
		{ProductID: 2, SizeID: &sizeID, Quantity: 1, UnitPrice: dec("40.00")},
	})

	require.Len(t, items, 2)
	assert.True(t, items[0].Subtotal.Equal(dec("50.00")))
	assert.True(t, items[1].Subtotal.Equal(dec("40.00")))
	assert.True(t, total.Equal(dec("90.00")), "total=%s", total)
}

func TestOrderUsecase_Checkout_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	addresses := new(AddressRepoMock)

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(3), "key-1").Return(model.Order{}, false, nil)
	f.carts.On("FindActiveByUserID", mock.Anything, int64(3)).Return(model.Cart{ID: 5, UserID: 3}, nil)
	f.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return(bakeryCart(), nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 3 &&
			o.Status == model.OrderStatusPending &&
			o.PaymentStatus == model.PaymentStatusPending &&
			o.TotalAmount.Equal(dec("90.00")) &&
			o.EstimatedDelivery.Sub(o.CreatedAt) == model.DeliveryLeadTime
	})).Return(int64(100), nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(100), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 && items[1].UnitPrice.Equal(dec("40.00"))
	})).Return(nil)
	f.outbox.On("Create", mock.Anything, mock.MatchedBy(func(ev model.OutboxEvent) bool {
		return ev.Topic == model.TopicOrders && ev.Operation == model.OperationInsert && ev.EntityID == 100
	})).Return(nil)
	f.carts.On("Clear", mock.Anything, int64(5)).Return(nil)
	f.carts.On("MarkCheckedOut", mock.Anything, int64(5)).Return(nil)

	uc := usecase.NewOrderUsecase(f.tx, addresses)

	out, err := uc.Checkout(ctx, 3, usecase.CheckoutInput{
		DeliveryAddress: "Av. Reforma 123",
		PaymentMethod:   "efectivo",
		IdempotencyKey:  "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), out.ID)
	assert.True(t, out.TotalAmount.Equal(dec("90.00")))
	assert.Equal(t, "Av. Reforma 123", out.DeliveryAddress)
	assert.Len(t, out.Items, 2)

	f.orders.AssertExpectations(t)
	f.orderItems.AssertExpectations(t)
	f.carts.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
}

func TestOrderUsecase_Checkout_SameKeyReturnsExistingOrder(t *testing.T) {
	f := newFixture()
	existing := model.Order{ID: 42, UserID: 3, Status: model.OrderStatusPending, TotalAmount: dec("90.00")}
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(3), "key-1").Return(existing, true, nil)

	uc := usecase.NewOrderUsecase(f.tx, new(AddressRepoMock))

	out, err := uc.Checkout(context.Background(), 3, usecase.CheckoutInput{
		DeliveryAddress: "Av. Reforma 123",
		PaymentMethod:   "efectivo",
		IdempotencyKey:  "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)

	// カートには触らない
	f.carts.AssertNotCalled(t, "FindActiveByUserID", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_EmptyCart(t *testing.T) {
	f := newFixture()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(3), "key-1").Return(model.Order{}, false, nil)
	f.carts.On("FindActiveByUserID", mock.Anything, int64(3)).Return(model.Cart{ID: 5}, nil)
	f.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil)

	uc := usecase.NewOrderUsecase(f.tx, new(AddressRepoMock))

	_, err := uc.Checkout(context.Background(), 3, usecase.CheckoutInput{
		DeliveryAddress: "Av. Reforma 123",
		PaymentMethod:   "efectivo",
		IdempotencyKey:  "key-1",
	})
	assertHTTPError(t, err, http.StatusBadRequest, "El carrito está vacío")
}

func TestOrderUsecase_Checkout_NoActiveCart(t *testing.T) {
	f := newFixture()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(3), "key-1").Return(model.Order{}, false, nil)
	f.carts.On("FindActiveByUserID", mock.Anything, int64(3)).Return(model.Cart{}, repo.ErrNotFound)

	uc := usecase.NewOrderUsecase(f.tx, new(AddressRepoMock))

	_, err := uc.Checkout(context.Background(), 3, usecase.CheckoutInput{
		DeliveryAddress: "Av. Reforma 123",
		PaymentMethod:   "efectivo",
		IdempotencyKey:  "key-1",
	})
	assertHTTPError(t, err, http.StatusBadRequest, "El carrito está vacío")
}

func TestOrderUsecase_Checkout_InactiveProduct(t *testing.T) {
	f := newFixture()
	items := bakeryCart()
	items[0].Product.IsActive = false

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(3), "key-1").Return(model.Order{}, false, nil)
	f.carts.On("FindActiveByUserID", mock.Anything, int64(3)).Return(model.Cart{ID: 5}, nil)
	f.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return(items, nil)

	uc := usecase.NewOrderUsecase(f.tx, new(AddressRepoMock))

	_, err := uc.Checkout(context.Background(), 3, usecase.CheckoutInput{
		DeliveryAddress: "Av. Reforma 123",
		PaymentMethod:   "efectivo",
		IdempotencyKey:  "key-1",
	})
	assertHTTPError(t, err, http.StatusBadRequest, "Pan de muerto")
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_MissingIdempotencyKey(t *testing.T) {
	uc := usecase.NewOrderUsecase(new(TxManagerMock), new(AddressRepoMock))

	_, err := uc.Checkout(context.Background(), 3, usecase.CheckoutInput{PaymentMethod: "efectivo"})
	assertHTTPError(t, err, http.StatusBadRequest, "X-Idempotency-Key")
}

func TestOrderUsecase_Checkout_OtherUsersAddressIsNotFound(t *testing.T) {
	addresses := new(AddressRepoMock)
	addresses.On("FindByID", mock.Anything, int64(9)).Return(model.Address{ID: 9, UserID: 99}, nil)

	uc := usecase.NewOrderUsecase(new(TxManagerMock), addresses)

	_, err := uc.Checkout(context.Background(), 3, usecase.CheckoutInput{
		AddressID:      9,
		PaymentMethod:  "efectivo",
		IdempotencyKey: "key-1",
	})
	assertHTTPError(t, err, http.StatusNotFound, "Dirección no encontrada")
}

func TestOrderUsecase_Checkout_NoAddressAtAll(t *testing.T) {
	addresses := new(AddressRepoMock)
	addresses.On("FindDefault", mock.Anything, int64(3)).Return(model.Address{}, repo.ErrNotFound)

	uc := usecase.NewOrderUsecase(new(TxManagerMock), addresses)

	_, err := uc.Checkout(context.Background(), 3, usecase.CheckoutInput{
		PaymentMethod:  "efectivo",
		IdempotencyKey: "key-1",
	})
	assertHTTPError(t, err, http.StatusBadRequest, "dirección de entrega")
}

func TestOrderUsecase_GetMyOrderDetail_OtherUserIsNotFound(t *testing.T) {
	f := newFixture()
	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{ID: 10, UserID: 99}, nil)

	uc := usecase.NewOrderUsecase(f.tx, new(AddressRepoMock))

	_, err := uc.GetMyOrderDetail(context.Background(), 3, 10)
	assertHTTPError(t, err, http.StatusNotFound, "Pedido no encontrado")
}

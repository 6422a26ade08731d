package usecase_test

import (
	"context"
	"errors"
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

func newProductUC() (*usecase.ProductUsecase, *ProductRepoMock, *AuditRepoMock, *cacheStub) {
	products := new(ProductRepoMock)
	audits := new(AuditRepoMock)
	cache := newCacheStub()
	return usecase.NewProductUsecase(products, audits, cache, "bakery"), products, audits, cache
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// =====================
// ListPublicProducts
// =====================

func TestProductUsecase_List_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   usecase.ListProductsInput
		msg  string
	}{
		{name: "page 0", in: usecase.ListProductsInput{Page: 0, Limit: 20}, msg: "Página inválida"},
		{name: "limit 101", in: usecase.ListProductsInput{Page: 1, Limit: 101}, msg: "Límite inválido"},
		{name: "qが長すぎる", in: usecase.ListProductsInput{Page: 1, Limit: 20, Q: strings.Repeat("a", 101)}, msg: "demasiado larga"},
		{name: "min負", in: usecase.ListProductsInput{Page: 1, Limit: 20, MinPrice: decPtr("-1")}, msg: "min_price"},
		{name: "min>max", in: usecase.ListProductsInput{Page: 1, Limit: 20, MinPrice: decPtr("50"), MaxPrice: decPtr("10")}, msg: "min_price debe ser <= max_price"},
		{name: "sort不正", in: usecase.ListProductsInput{Page: 1, Limit: 20, Sort: "random"}, msg: "Orden inválido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, products, _, _ := newProductUC()

			_, err := uc.ListPublicProducts(context.Background(), tt.in)
			assertHTTPError(t, err, http.StatusBadRequest, tt.msg)
			products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

func TestProductUsecase_List_PublicHidesInactive(t *testing.T) {
	uc, products, _, _ := newProductUC()

	items := []model.Product{{ID: 1, Name: "Concha", Price: dec("12.00"), IsActive: true}}
	products.On("List", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return !q.IncludeInactive && q.Q == "concha" && q.Sort == "price_asc"
	})).Return(items, int64(1), nil).Once()
	products.On("List", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.IncludeInactive
	})).Return(items, int64(1), nil).Once()

	out, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20, Q: " concha ", Sort: "price_asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Len(t, out.Items, 1)

	_, err = uc.AdminListProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20})
	require.NoError(t, err)

	products.AssertExpectations(t)
}

// =====================
// GetProductDetail
// =====================

func TestProductUsecase_GetProductDetail(t *testing.T) {
	uc, products, _, _ := newProductUC()

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Rosca", IsActive: true}, nil)
	products.On("FindByID", mock.Anything, int64(2)).Return(model.Product{ID: 2, Name: "Oculto", IsActive: false}, nil)
	products.On("FindByID", mock.Anything, int64(3)).Return(nil, repo.ErrNotFound)
	products.On("FindByID", mock.Anything, int64(4)).Return(nil, errors.New("db down"))

	p, err := uc.GetProductDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Rosca", p.Name)

	// 非公開は存在しない扱い
	_, err = uc.GetProductDetail(context.Background(), 2)
	assertHTTPError(t, err, http.StatusNotFound, "Producto no encontrado")

	_, err = uc.GetProductDetail(context.Background(), 3)
	assertHTTPError(t, err, http.StatusNotFound, "Producto no encontrado")

	_, err = uc.GetProductDetail(context.Background(), 4)
	assertHTTPError(t, err, http.StatusInternalServerError, "db down")

	_, err = uc.GetProductDetail(context.Background(), 0)
	assertHTTPError(t, err, http.StatusBadRequest, "ID de producto inválido")
}

// =====================
// Admin
// =====================

func TestProductUsecase_AdminCreateProduct(t *testing.T) {
	uc, products, audits, cache := newProductUC()

	in := usecase.AdminProductInput{
		Name:     " Pastel de tres leches ",
		Price:    dec("350.00"),
		IsActive: true,
		Sizes: []usecase.AdminSizeInput{
			{Name: "Chico", Price: dec("250.00")},
			{Name: "Grande", Price: dec("450.00")},
		},
	}

	products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Pastel de tres leches" && len(p.Sizes) == 2 && p.Sizes[1].Price.Equal(dec("450.00"))
	})).Return(model.Product{ID: 7, Name: "Pastel de tres leches"}, nil)
	audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCreateProduct && l.ResourceID == 7 && l.ResourceType == model.AuditResourceProduct && l.ActorUserID == 1
	})).Return(nil)

	p, err := uc.AdminCreateProduct(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)

	// 商品とカテゴリのキャッシュを捨てる
	assert.Equal(t, []string{"bakery:products", "bakery:categories"}, cache.deleted)

	products.AssertExpectations(t)
	audits.AssertExpectations(t)
}

func TestProductUsecase_AdminCreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   usecase.AdminProductInput
		msg  string
	}{
		{name: "名前なし", in: usecase.AdminProductInput{Price: dec("10")}, msg: "El nombre es obligatorio"},
		{name: "価格0", in: usecase.AdminProductInput{Name: "Bolillo", Price: dec("0")}, msg: "El precio debe ser mayor a 0"},
		{name: "カテゴリ不正", in: usecase.AdminProductInput{Name: "Bolillo", Price: dec("3"), CategoryID: new(int64)}, msg: "Categoría inválida"},
		{name: "サイズ価格0", in: usecase.AdminProductInput{Name: "Bolillo", Price: dec("3"), Sizes: []usecase.AdminSizeInput{{Name: "x", Price: dec("0")}}}, msg: "tamaño debe ser mayor a 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, products, _, _ := newProductUC()

			_, err := uc.AdminCreateProduct(context.Background(), 1, tt.in)
			assertHTTPError(t, err, http.StatusBadRequest, tt.msg)
			products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestProductUsecase_AdminDeleteProduct(t *testing.T) {
	uc, products, audits, cache := newProductUC()

	products.On("SoftDelete", mock.Anything, int64(5)).Return(nil)
	products.On("SoftDelete", mock.Anything, int64(6)).Return(repo.ErrNotFound)
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, uc.AdminDeleteProduct(context.Background(), 1, 5))
	assert.Len(t, cache.deleted, 2)

	err := uc.AdminDeleteProduct(context.Background(), 1, 6)
	assertHTTPError(t, err, http.StatusNotFound, "Producto no encontrado")

	err = uc.AdminDeleteProduct(context.Background(), 0, 5)
	assertHTTPError(t, err, http.StatusUnauthorized, "No autorizado")
}

// 別商品のサイズは消せない
func TestProductUsecase_AdminDeleteSize_OtherProduct(t *testing.T) {
	uc, products, _, _ := newProductUC()

	products.On("FindSize", mock.Anything, int64(30)).Return(model.ProductSize{ID: 30, ProductID: 2}, nil)

	err := uc.AdminDeleteSize(context.Background(), 1, 1, 30)
	assertHTTPError(t, err, http.StatusNotFound, "Tamaño no encontrado")
	products.AssertNotCalled(t, "DeleteSize", mock.Anything, mock.Anything)
}

func TestProductUsecase_AdminDeleteSize(t *testing.T) {
	uc, products, _, cache := newProductUC()

	products.On("FindSize", mock.Anything, int64(30)).Return(model.ProductSize{ID: 30, ProductID: 1}, nil)
	products.On("DeleteSize", mock.Anything, int64(30)).Return(nil)

	require.NoError(t, uc.AdminDeleteSize(context.Background(), 1, 1, 30))
	assert.NotEmpty(t, cache.deleted)
	products.AssertExpectations(t)
}

package handler

import (
	"net/http"

	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products の公開API
type ProductHandler struct {
	uc    *usecase.ProductUsecase
	cache echo.MiddlewareFunc
}

// DI。cacheはレスポンスキャッシュのミドルウェア
func NewProductHandler(uc *usecase.ProductUsecase, cache echo.MiddlewareFunc) *ProductHandler {
	return &ProductHandler{uc: uc, cache: cache}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list, h.cache)
	e.GET("/products/:id", h.detail, h.cache)
	e.GET("/categories", h.categories, h.cache)
}

func (h *ProductHandler) list(c echo.Context) error {
	in, ok := bindProductQuery(c)
	if !ok {
		return badRequest(c, "Parámetros inválidos")
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID de producto inválido")
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) categories(c echo.Context) error {
	cats, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cats)
}

// page（default 1）、limit（default 20）
func bindProductQuery(c echo.Context) (usecase.ListProductsInput, bool) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return usecase.ListProductsInput{}, false
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return usecase.ListProductsInput{}, false
	}
	categoryID, ok := queryInt64Ptr(c, "category_id")
	if !ok {
		return usecase.ListProductsInput{}, false
	}

	in := usecase.ListProductsInput{
		Page:       page,
		Limit:      limit,
		Q:          c.QueryParam("q"),
		CategoryID: categoryID,
		Sort:       c.QueryParam("sort"),
	}

	if v := c.QueryParam("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return usecase.ListProductsInput{}, false
		}
		in.MinPrice = &d
	}
	if v := c.QueryParam("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return usecase.ListProductsInput{}, false
		}
		in.MaxPrice = &d
	}
	return in, true
}

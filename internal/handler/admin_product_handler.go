package handler

import (
	"net/http"

	"bakery/internal/config"
	"bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CategoryCreateRequest struct {
	Name string `json:"name"`
}

// /admin/products と /admin/categories をまとめる
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)

	admin.GET("/products", h.listProducts)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.POST("/products/:id/sizes", h.createSize)
	admin.PUT("/products/:id/sizes/:size_id", h.updateSize)
	admin.DELETE("/products/:id/sizes/:size_id", h.deleteSize)
	admin.POST("/categories", h.createCategory)
}

func (h *AdminProductHandler) listProducts(c echo.Context) error {
	in, ok := bindProductQuery(c)
	if !ok {
		return badRequest(c, "Parámetros inválidos")
	}

	out, err := h.uc.AdminListProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.AdminProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Datos inválidos")
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID de producto inválido")
	}

	var req usecase.AdminProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Datos inválidos")
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, productID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID de producto inválido")
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, productID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Producto eliminado"})
}

func (h *AdminProductHandler) createSize(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID de producto inválido")
	}

	var req usecase.AdminSizeInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Datos inválidos")
	}

	s, err := h.uc.AdminAddSize(c.Request().Context(), adminID, productID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *AdminProductHandler) updateSize(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok1 := paramID(c, "id")
	sizeID, ok2 := paramID(c, "size_id")
	if !ok1 || !ok2 {
		return badRequest(c, "ID inválido")
	}

	var req usecase.AdminSizeInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Datos inválidos")
	}

	s, err := h.uc.AdminUpdateSize(c.Request().Context(), adminID, productID, sizeID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AdminProductHandler) deleteSize(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok1 := paramID(c, "id")
	sizeID, ok2 := paramID(c, "size_id")
	if !ok1 || !ok2 {
		return badRequest(c, "ID inválido")
	}

	if err := h.uc.AdminDeleteSize(c.Request().Context(), adminID, productID, sizeID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Tamaño eliminado"})
}

func (h *AdminProductHandler) createCategory(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CategoryCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Datos inválidos")
	}

	cat, err := h.uc.AdminCreateCategory(c.Request().Context(), adminID, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

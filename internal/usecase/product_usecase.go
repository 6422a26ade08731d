package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	auditRepo   repo.AuditLogRepository
	cache       KeyValueCache
	cachePrefix string
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	auditRepo repo.AuditLogRepository,
	cache KeyValueCache,
	cachePrefix string,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		auditRepo:   auditRepo,
		cache:       cache,
		cachePrefix: cachePrefix,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	return u.list(ctx, in, false)
}

// 管理画面は非公開商品も含める
func (u *ProductUsecase) AdminListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	return u.list(ctx, in, true)
}

func (u *ProductUsecase) list(ctx context.Context, in ListProductsInput, includeInactive bool) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "Página inválida")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "Límite inválido")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "La búsqueda es demasiado larga")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price debe ser >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price debe ser >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price debe ser <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc", "name":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "Orden inválido")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:            in.Page,
		Limit:           in.Limit,
		Q:               strings.TrimSpace(in.Q),
		CategoryID:      in.CategoryID,
		MinPrice:        in.MinPrice,
		MaxPrice:        in.MaxPrice,
		Sort:            in.Sort,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return ProductListOutput{}, dbError("Error al obtener los productos", err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "ID de producto inválido")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Producto no encontrado")
	}
	if err != nil {
		return model.Product{}, dbError("Error al obtener el producto", err)
	}

	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Producto no encontrado")
	}
	return p, nil
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats, err := u.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, dbError("Error al obtener las categorías", err)
	}
	return cats, nil
}

type AdminSizeInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type AdminProductInput struct {
	CategoryID  *int64           `json:"category_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	ImageURL    string           `json:"image_url"`
	IsActive    bool             `json:"is_active"`
	Sizes       []AdminSizeInput `json:"sizes"`
}

func validateSize(in AdminSizeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "El nombre del tamaño es obligatorio")
	}
	if !in.Price.IsPositive() {
		return NewHTTPError(http.StatusBadRequest, "El precio del tamaño debe ser mayor a 0")
	}
	return nil
}

func validateProduct(in AdminProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "El nombre es obligatorio")
	}
	if len(in.Name) > 255 {
		return NewHTTPError(http.StatusBadRequest, "El nombre es demasiado largo")
	}
	if !in.Price.IsPositive() {
		return NewHTTPError(http.StatusBadRequest, "El precio debe ser mayor a 0")
	}
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "Categoría inválida")
	}
	for _, s := range in.Sizes {
		if err := validateSize(s); err != nil {
			return err
		}
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if err := validateProduct(in); err != nil {
		return model.Product{}, err
	}

	now := time.Now()
	p := model.Product{
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, s := range in.Sizes {
		p.Sizes = append(p.Sizes, model.ProductSize{Name: strings.TrimSpace(s.Name), Price: s.Price})
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, dbError("Error al crear el producto", err)
	}

	u.writeAudit(ctx, adminUserID, model.AuditActionCreateProduct, created.ID, nil, created)
	u.invalidate(ctx)
	return created, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "ID de producto inválido")
	}
	if err := validateProduct(in); err != nil {
		return model.Product{}, err
	}

	before, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Producto no encontrado")
	}
	if err != nil {
		return model.Product{}, dbError("Error al obtener el producto", err)
	}

	// サイズはサイズ用のAPIで変更する
	err = u.productRepo.Update(ctx, model.Product{
		ID:          productID,
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		IsActive:    in.IsActive,
	})
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Producto no encontrado")
	}
	if err != nil {
		return model.Product{}, dbError("Error al actualizar el producto", err)
	}

	after, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, dbError("Error al obtener el producto", err)
	}

	u.writeAudit(ctx, adminUserID, model.AuditActionUpdateProduct, productID, before, after)
	u.invalidate(ctx)
	return after, nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "ID de producto inválido")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "Producto no encontrado")
	}
	if err != nil {
		return dbError("Error al eliminar el producto", err)
	}

	u.writeAudit(ctx, adminUserID, model.AuditActionDeleteProduct, productID, map[string]int64{"id": productID}, nil)
	u.invalidate(ctx)
	return nil
}

func (u *ProductUsecase) AdminAddSize(ctx context.Context, adminUserID int64, productID int64, in AdminSizeInput) (model.ProductSize, error) {
	if adminUserID <= 0 {
		return model.ProductSize{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if err := validateSize(in); err != nil {
		return model.ProductSize{}, err
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return model.ProductSize{}, NewHTTPError(http.StatusNotFound, "Producto no encontrado")
		}
		return model.ProductSize{}, dbError("Error al obtener el producto", err)
	}

	s, err := u.productRepo.CreateSize(ctx, model.ProductSize{
		ProductID: productID,
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
	})
	if err != nil {
		return model.ProductSize{}, dbError("Error al crear el tamaño", err)
	}

	u.invalidate(ctx)
	return s, nil
}

func (u *ProductUsecase) AdminUpdateSize(ctx context.Context, adminUserID int64, productID, sizeID int64, in AdminSizeInput) (model.ProductSize, error) {
	if adminUserID <= 0 {
		return model.ProductSize{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if err := validateSize(in); err != nil {
		return model.ProductSize{}, err
	}

	s, err := u.findOwnedSize(ctx, productID, sizeID)
	if err != nil {
		return model.ProductSize{}, err
	}

	s.Name = strings.TrimSpace(in.Name)
	s.Price = in.Price
	if err := u.productRepo.UpdateSize(ctx, s); err != nil {
		if err == repo.ErrNotFound {
			return model.ProductSize{}, NewHTTPError(http.StatusNotFound, "Tamaño no encontrado")
		}
		return model.ProductSize{}, dbError("Error al actualizar el tamaño", err)
	}

	u.invalidate(ctx)
	return s, nil
}

func (u *ProductUsecase) AdminDeleteSize(ctx context.Context, adminUserID int64, productID, sizeID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}

	if _, err := u.findOwnedSize(ctx, productID, sizeID); err != nil {
		return err
	}

	if err := u.productRepo.DeleteSize(ctx, sizeID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "Tamaño no encontrado")
		}
		return dbError("Error al eliminar el tamaño", err)
	}

	u.invalidate(ctx)
	return nil
}

func (u *ProductUsecase) AdminCreateCategory(ctx context.Context, adminUserID int64, name string) (model.Category, error) {
	if adminUserID <= 0 {
		return model.Category{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "Nombre de categoría inválido")
	}

	c, err := u.productRepo.CreateCategory(ctx, model.Category{Name: name})
	if err != nil {
		return model.Category{}, dbError("Error al crear la categoría", err)
	}

	u.invalidate(ctx)
	return c, nil
}

// 別商品のサイズIDは404
func (u *ProductUsecase) findOwnedSize(ctx context.Context, productID, sizeID int64) (model.ProductSize, error) {
	if productID <= 0 || sizeID <= 0 {
		return model.ProductSize{}, NewHTTPError(http.StatusBadRequest, "ID inválido")
	}
	s, err := u.productRepo.FindSize(ctx, sizeID)
	if err == repo.ErrNotFound || (err == nil && s.ProductID != productID) {
		return model.ProductSize{}, NewHTTPError(http.StatusNotFound, "Tamaño no encontrado")
	}
	if err != nil {
		return model.ProductSize{}, dbError("Error al obtener el tamaño", err)
	}
	return s, nil
}

// 監査ログの失敗で商品更新は失敗にしない
func (u *ProductUsecase) writeAudit(ctx context.Context, actorID int64, action model.AuditAction, productID int64, before, after any) {
	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   string(b),
		AfterJSON:    string(a),
		CreatedAt:    time.Now(),
	})
}

// 商品とカテゴリのレスポンスキャッシュを捨てる
func (u *ProductUsecase) invalidate(ctx context.Context) {
	_ = u.cache.DeletePrefix(ctx, u.cachePrefix+":products")
	_ = u.cache.DeletePrefix(ctx, u.cachePrefix+":categories")
}

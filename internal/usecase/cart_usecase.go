package usecase

import (
	"context"
	"fmt"
	"net/http"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジック。
// 単価は保存せず、表示のたびに商品/サイズから引き直す。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

const maxCartLineQuantity = 100

type CartItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	ImageURL    string          `json:"image_url"`
	SizeID      *int64          `json:"size_id"`
	SizeName    string          `json:"size_name,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Unavailable bool            `json:"unavailable"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type AddCartInput struct {
	ProductID int64  `json:"product_id"`
	SizeID    *int64 `json:"size_id"`
	Quantity  int64  `json:"quantity"`
}

type UpdateCartItemInput struct {
	Quantity int64 `json:"quantity"`
}

// GetCart はカート取得（無ければACTIVEを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError("Error al obtener el carrito", err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddToCart はカートに追加（同一商品・同一サイズは数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "product_id inválido")
	}
	if in.Quantity < 1 || in.Quantity > maxCartLineQuantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "Cantidad inválida")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "Producto no disponible")
	}
	if err != nil {
		return CartResponse{}, dbError("Error al obtener el producto", err)
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "Producto no disponible")
	}
	if _, err := u.resolveSize(ctx, p, in.SizeID); err != nil {
		return CartResponse{}, err
	}

	// ACTIVEカート取得（無ければ作成）
	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError("Error al obtener el carrito", err)
	}

	// 同じ商品・サイズの行に足すので、足した後も上限以内
	current, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, dbError("Error al obtener el carrito", err)
	}
	for _, it := range current {
		if it.ProductID == in.ProductID && sameSize(it.SizeID, in.SizeID) && it.Quantity+in.Quantity > maxCartLineQuantity {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("Máximo %d unidades por producto", maxCartLineQuantity))
		}
	}

	if err := u.cartItemRepo.UpsertByCartProductSize(ctx, cart.ID, in.ProductID, in.SizeID, in.Quantity); err != nil {
		return CartResponse{}, dbError("Error al agregar al carrito", err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 数量変更（所有チェック）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "ID inválido")
	}
	if in.Quantity < 1 || in.Quantity > maxCartLineQuantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "Cantidad inválida")
	}

	item, err := u.findOwnedItem(ctx, userID, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "Producto del carrito no encontrado")
		}
		return CartResponse{}, dbError("Error al actualizar el carrito", err)
	}

	return u.buildCartResponse(ctx, item.CartID)
}

func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "ID inválido")
	}

	item, err := u.findOwnedItem(ctx, userID, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "Producto del carrito no encontrado")
		}
		return CartResponse{}, dbError("Error al eliminar del carrito", err)
	}

	return u.buildCartResponse(ctx, item.CartID)
}

// 明細を全部消す
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError("Error al obtener el carrito", err)
	}
	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return CartResponse{}, dbError("Error al vaciar el carrito", err)
	}

	return CartResponse{Items: []CartItemResponse{}, Total: decimal.Zero}, nil
}

// 他人の明細は404
func (u *CartUsecase) findOwnedItem(ctx context.Context, userID, cartItemID int64) (model.CartItem, error) {
	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return model.CartItem{}, dbError("Error al obtener el carrito", err)
	}
	if !owned {
		return model.CartItem{}, NewHTTPError(http.StatusNotFound, "Producto del carrito no encontrado")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return model.CartItem{}, NewHTTPError(http.StatusNotFound, "Producto del carrito no encontrado")
	}
	if err != nil {
		return model.CartItem{}, dbError("Error al obtener el carrito", err)
	}
	return item, nil
}

func sameSize(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// サイズ指定はその商品のサイズであること
func (u *CartUsecase) resolveSize(ctx context.Context, p model.Product, sizeID *int64) (*model.ProductSize, error) {
	return resolveProductSize(ctx, u.productRepo, p, sizeID)
}

func resolveProductSize(ctx context.Context, products repo.ProductRepository, p model.Product, sizeID *int64) (*model.ProductSize, error) {
	if sizeID == nil {
		return nil, nil
	}
	s, err := products.FindSize(ctx, *sizeID)
	if err == repo.ErrNotFound || (err == nil && s.ProductID != p.ID) {
		return nil, NewHTTPError(http.StatusBadRequest, "Tamaño inválido para "+p.Name)
	}
	if err != nil {
		return nil, dbError("Error al obtener el tamaño", err)
	}
	return &s, nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, dbError("Error al obtener el carrito", err)
	}
	return toCartResponse(items), nil
}

// 非公開・削除済みの商品は合計に入れない
func toCartResponse(items []model.CartItem) CartResponse {
	out := CartResponse{
		Items: make([]CartItemResponse, 0, len(items)),
		Total: decimal.Zero,
	}
	for _, it := range items {
		line := CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			SizeID:    it.SizeID,
			Quantity:  it.Quantity,
		}
		if it.Size != nil {
			line.SizeName = it.Size.Name
		}
		if it.Product == nil || !it.Product.IsActive || (it.SizeID != nil && it.Size == nil) {
			line.Unavailable = true
			if it.Product != nil {
				line.Name = it.Product.Name
			}
			out.Items = append(out.Items, line)
			continue
		}

		line.Name = it.Product.Name
		line.ImageURL = it.Product.ImageURL
		line.UnitPrice = it.Product.PriceFor(it.Size)
		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
		out.Total = out.Total.Add(line.Subtotal)
		out.Items = append(out.Items, line)
	}
	return out
}

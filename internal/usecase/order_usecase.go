package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
}

func NewOrderUsecase(tx repo.TransactionManager, addresses repo.AddressRepository) *OrderUsecase {
	return &OrderUsecase{tx: tx, addresses: addresses}
}

// address_idか住所文字列のどちらか。両方なければデフォルト住所
type CheckoutInput struct {
	AddressID       int64  `json:"address_id"`
	DeliveryAddress string `json:"delivery_address"`
	PaymentMethod   string `json:"payment_method"`
	Notes           string `json:"notes"`
	IdempotencyKey  string `json:"-"`
}

type OrderItemOutput struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	SizeID      *int64          `json:"size_id"`
	SizeName    string          `json:"size_name,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID                int64               `json:"id"`
	UserID            int64               `json:"user_id"`
	Customer          *CustomerSnapshot   `json:"customer,omitempty"`
	Status            model.OrderStatus   `json:"status"`
	PaymentStatus     model.PaymentStatus `json:"payment_status"`
	PaymentMethod     string              `json:"payment_method"`
	DeliveryAddress   string              `json:"delivery_address"`
	Notes             string              `json:"notes"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	EstimatedDelivery time.Time           `json:"estimated_delivery"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Items             []OrderItemOutput   `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 注文1行分。単価は呼び出し側で確定させる
type OrderLine struct {
	ProductID int64
	SizeID    *int64
	Quantity  int64
	UnitPrice decimal.Decimal
	Product   *model.Product
	Size      *model.ProductSize
}

type orderDetails struct {
	PaymentMethod   string
	DeliveryAddress string
	Notes           string
	IdempotencyKey  string
}

// 小計 = 数量 × 単価、合計 = 小計の和
func PriceOrderLines(lines []OrderLine) ([]model.OrderItem, decimal.Decimal) {
	items := make([]model.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		sub := l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
		items = append(items, model.OrderItem{
			ProductID: l.ProductID,
			SizeID:    l.SizeID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  sub,
			Product:   l.Product,
			Size:      l.Size,
		})
		total = total.Add(sub)
	}
	return items, total
}

func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "X-Idempotency-Key inválido")
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "El método de pago es obligatorio")
	}
	if len(method) > 50 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "Método de pago inválido")
	}
	if len(in.Notes) > 500 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "Las notas son demasiado largas")
	}

	address, err := u.deliveryAddress(ctx, userID, in)
	if err != nil {
		return OrderOutput{}, err
	}

	details := orderDetails{
		PaymentMethod:   method,
		DeliveryAddress: address,
		Notes:           strings.TrimSpace(in.Notes),
		IdempotencyKey:  key,
	}

	var out OrderOutput

	//カート読み込みから注文作成、カートを空にするまで1トランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return dbError("Error al verificar el pedido", err)
		}
		if found {
			out = toOrderOutput(existing)
			return nil
		}

		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "El carrito está vacío")
		}
		if err != nil {
			return dbError("Error al obtener el carrito", err)
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return dbError("Error al obtener el carrito", err)
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "El carrito está vacío")
		}

		lines, err := cartLines(cartItems)
		if err != nil {
			return err
		}

		order, err := createOrder(ctx, r, userID, lines, details)
		if err != nil {
			return err
		}

		//カートをCHECKED_OUTにして、明細をクリア（再注文防止）
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return dbError("Error al vaciar el carrito", err)
		}
		if err := r.Carts().MarkCheckedOut(ctx, cart.ID); err != nil {
			return dbError("Error al cerrar el carrito", err)
		}

		out = toOrderOutput(order)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 単価は今の商品/サイズの価格
func cartLines(items []model.CartItem) ([]OrderLine, error) {
	lines := make([]OrderLine, 0, len(items))
	for _, ci := range items {
		if ci.Product == nil || !ci.Product.IsActive {
			name := "un producto"
			if ci.Product != nil {
				name = ci.Product.Name
			}
			return nil, NewHTTPError(http.StatusBadRequest, "El producto "+name+" ya no está disponible")
		}
		if ci.SizeID != nil && ci.Size == nil {
			return nil, NewHTTPError(http.StatusBadRequest, "El tamaño elegido para "+ci.Product.Name+" ya no está disponible")
		}
		lines = append(lines, OrderLine{
			ProductID: ci.ProductID,
			SizeID:    ci.SizeID,
			Quantity:  ci.Quantity,
			UnitPrice: ci.Product.PriceFor(ci.Size),
			Product:   ci.Product,
			Size:      ci.Size,
		})
	}
	return lines, nil
}

// 注文と明細を作ってイベントを積む。tx内で呼ぶ
func createOrder(ctx context.Context, r repo.TxRepos, customerID int64, lines []OrderLine, d orderDetails) (model.Order, error) {
	if len(lines) == 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "El pedido no tiene productos")
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "Cantidad inválida")
		}
		if !l.UnitPrice.IsPositive() {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "Precio inválido")
		}
	}

	items, total := PriceOrderLines(lines)

	now := time.Now()
	order := model.Order{
		UserID:            customerID,
		Status:            model.OrderStatusPending,
		PaymentStatus:     model.PaymentStatusPending,
		PaymentMethod:     d.PaymentMethod,
		DeliveryAddress:   d.DeliveryAddress,
		Notes:             d.Notes,
		TotalAmount:       total,
		EstimatedDelivery: now.Add(model.DeliveryLeadTime),
		IdempotencyKey:    d.IdempotencyKey,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	orderID, err := r.Orders().Create(ctx, order)
	if err != nil {
		//同時に同じキーが入った
		if _, found, err2 := r.Orders().FindByIdempotencyKey(ctx, customerID, d.IdempotencyKey); err2 == nil && found {
			return model.Order{}, NewHTTPError(http.StatusConflict, "El pedido ya está siendo procesado")
		}
		return model.Order{}, dbError("Error al crear el pedido", err)
	}

	if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
		return model.Order{}, dbError("Error al crear los productos del pedido", err)
	}

	order.ID = orderID
	for i := range items {
		items[i].OrderID = orderID
	}
	order.Items = items

	if err := emit(ctx, r, model.TopicOrders, model.OperationInsert, orderID, customerID, orderEvent(order)); err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (u *OrderUsecase) deliveryAddress(ctx context.Context, userID int64, in CheckoutInput) (string, error) {
	if in.AddressID > 0 {
		addr, err := u.addresses.FindByID(ctx, in.AddressID)
		if err == repo.ErrNotFound || (err == nil && addr.UserID != userID) {
			//他人の住所は存在しない扱い
			return "", NewHTTPError(http.StatusNotFound, "Dirección no encontrada")
		}
		if err != nil {
			return "", dbError("Error al obtener la dirección", err)
		}
		return addr.DeliveryText(), nil
	}

	if text := strings.TrimSpace(in.DeliveryAddress); text != "" {
		if len(text) > 500 {
			return "", NewHTTPError(http.StatusBadRequest, "La dirección es demasiado larga")
		}
		return text, nil
	}

	addr, err := u.addresses.FindDefault(ctx, userID)
	if err == repo.ErrNotFound {
		return "", NewHTTPError(http.StatusBadRequest, "La dirección de entrega es obligatoria")
	}
	if err != nil {
		return "", dbError("Error al obtener la dirección", err)
	}
	return addr.DeliveryText(), nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return dbError("Error al obtener los pedidos", err)
		}

		out = OrderListOutput{Items: make([]OrderOutput, 0, len(orders)), Total: total, Page: page, Limit: limit}
		for _, o := range orders {
			out.Items = append(out.Items, toOrderOutput(o))
		}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "No autorizado")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "ID inválido")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
		}
		if err != nil {
			return dbError("Error al obtener el pedido", err)
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "Pedido no encontrado")
		}

		out = toOrderOutput(o)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func orderProductNames(o model.Order) []string {
	names := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if it.Product != nil {
			names = append(names, it.Product.Name)
		}
	}
	return names
}

// outboxに載せる注文の要約
func orderEvent(o model.Order) map[string]any {
	return map[string]any{
		"id":             o.ID,
		"user_id":        o.UserID,
		"status":         o.Status,
		"payment_status": o.PaymentStatus,
		"total_amount":   o.TotalAmount,
		"updated_at":     o.UpdatedAt,
	}
}

func toOrderOutput(o model.Order) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		item := OrderItemOutput{
			ProductID: it.ProductID,
			SizeID:    it.SizeID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
		}
		if it.Size != nil {
			item.SizeName = it.Size.Name
		}
		outItems = append(outItems, item)
	}

	out := OrderOutput{
		ID:                o.ID,
		UserID:            o.UserID,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		PaymentMethod:     o.PaymentMethod,
		DeliveryAddress:   o.DeliveryAddress,
		Notes:             o.Notes,
		TotalAmount:       o.TotalAmount,
		EstimatedDelivery: o.EstimatedDelivery,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Items:             outItems,
	}
	if o.Customer != nil {
		out.Customer = &CustomerSnapshot{
			ID:       o.Customer.ID,
			FullName: o.Customer.FullName,
			Email:    o.Customer.Email,
			Phone:    o.Customer.Phone,
		}
	}
	return out
}

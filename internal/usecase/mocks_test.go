package usecase_test

import (
	"context"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	carts         repo.CartRepository
	cartItems     repo.CartItemRepository
	products      repo.ProductRepository
	reservations  repo.ReservationRepository
	notifications repo.NotificationRepository
	auditLogs     repo.AuditLogRepository
	outbox        repo.OutboxRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository               { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository       { return r.orderItems }
func (r *TxReposMock) Carts() repo.CartRepository                 { return r.carts }
func (r *TxReposMock) CartItems() repo.CartItemRepository         { return r.cartItems }
func (r *TxReposMock) Products() repo.ProductRepository           { return r.products }
func (r *TxReposMock) Reservations() repo.ReservationRepository   { return r.reservations }
func (r *TxReposMock) Notifications() repo.NotificationRepository { return r.notifications }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository         { return r.auditLogs }
func (r *TxReposMock) Outbox() repo.OutboxRepository              { return r.outbox }

// =====================
// Repository mocks
// 使わないメソッドは埋め込んだinterface（nil）に任せる。呼ばれたらpanicする
// =====================

type OrderRepoMock struct {
	mock.Mock
	repo.OrderRepository
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct {
	mock.Mock
}

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

type CartRepoMock struct {
	mock.Mock
	repo.CartRepository
}

func (m *CartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) MarkCheckedOut(ctx context.Context, cartID int64) error {
	return m.Called(ctx, cartID).Error(0)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	return m.Called(ctx, cartID).Error(0)
}

type CartItemRepoMock struct {
	mock.Mock
	repo.CartItemRepository
}

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartProductSize(ctx context.Context, cartID int64, productID int64, sizeID *int64, addQty int64) error {
	return m.Called(ctx, cartID, productID, sizeID, addQty).Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	return m.Called(ctx, cartItemID, qty).Error(0)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	return m.Called(ctx, cartItemID).Error(0)
}

type AddressRepoMock struct {
	mock.Mock
	repo.AddressRepository
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) Create(ctx context.Context, a model.Address) (model.Address, error) {
	args := m.Called(ctx, a)
	out, _ := args.Get(0).(model.Address)
	return out, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Address)
	return list, args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, a model.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *AddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	return m.Called(ctx, addressID).Error(0)
}

func (m *AddressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	return m.Called(ctx, userID, addressID).Error(0)
}

func (m *AddressRepoMock) FindDefault(ctx context.Context, userID int64) (model.Address, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

type ReservationRepoMock struct {
	mock.Mock
}

func (m *ReservationRepoMock) CreateBulk(ctx context.Context, rows []model.Reservation) ([]model.Reservation, error) {
	args := m.Called(ctx, rows)
	out, _ := args.Get(0).([]model.Reservation)
	return out, args.Error(1)
}

func (m *ReservationRepoMock) FindByID(ctx context.Context, id int64) (model.Reservation, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(model.Reservation)
	return r, args.Error(1)
}

func (m *ReservationRepoMock) List(ctx context.Context, f repo.ReservationListFilter) ([]model.Reservation, error) {
	args := m.Called(ctx, f)
	rows, _ := args.Get(0).([]model.Reservation)
	return rows, args.Error(1)
}

func (m *ReservationRepoMock) ListByKey(ctx context.Context, key model.ReservationKey) ([]model.Reservation, error) {
	args := m.Called(ctx, key)
	rows, _ := args.Get(0).([]model.Reservation)
	return rows, args.Error(1)
}

func (m *ReservationRepoMock) UpdateStatusByKey(ctx context.Context, key model.ReservationKey, status model.ReservationStatus) (int64, error) {
	args := m.Called(ctx, key, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReservationRepoMock) DeleteByKey(ctx context.Context, key model.ReservationKey) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReservationRepoMock) BookedTimes(ctx context.Context, productID int64, date string, statuses []model.ReservationStatus) ([]string, error) {
	args := m.Called(ctx, productID, date, statuses)
	times, _ := args.Get(0).([]string)
	return times, args.Error(1)
}

func (m *ReservationRepoMock) ExistsForCustomerAt(ctx context.Context, key model.ReservationKey, statuses []model.ReservationStatus) (bool, error) {
	args := m.Called(ctx, key, statuses)
	return args.Bool(0), args.Error(1)
}

type ProductRepoMock struct {
	mock.Mock
	repo.ProductRepository
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindSize(ctx context.Context, sizeID int64) (model.ProductSize, error) {
	args := m.Called(ctx, sizeID)
	s, _ := args.Get(0).(model.ProductSize)
	return s, args.Error(1)
}

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProductRepoMock) DeleteSize(ctx context.Context, sizeID int64) error {
	return m.Called(ctx, sizeID).Error(0)
}

type NotificationRepoMock struct {
	mock.Mock
}

func (m *NotificationRepoMock) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	args := m.Called(ctx, n)
	out, _ := args.Get(0).(model.Notification)
	return out, args.Error(1)
}

func (m *NotificationRepoMock) FindByID(ctx context.Context, id int64) (model.Notification, error) {
	args := m.Called(ctx, id)
	n, _ := args.Get(0).(model.Notification)
	return n, args.Error(1)
}

func (m *NotificationRepoMock) ListByUserID(ctx context.Context, userID int64, f repo.NotificationFilter) ([]model.Notification, error) {
	args := m.Called(ctx, userID, f)
	list, _ := args.Get(0).([]model.Notification)
	return list, args.Error(1)
}

func (m *NotificationRepoMock) CountUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepoMock) MarkRead(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *NotificationRepoMock) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type OutboxRepoMock struct {
	mock.Mock
	repo.OutboxRepository
}

func (m *OutboxRepoMock) Create(ctx context.Context, ev model.OutboxEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type UserRepoMock struct {
	mock.Mock
	repo.UserRepository
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

// キャッシュは呼ばれた削除キーだけ覚える
type cacheStub struct {
	data    map[string][]byte
	deleted []string
}

func newCacheStub() *cacheStub {
	return &cacheStub{data: make(map[string][]byte)}
}

func (c *cacheStub) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *cacheStub) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *cacheStub) DeletePrefix(_ context.Context, prefix string) error {
	c.deleted = append(c.deleted, prefix)
	return nil
}

// 状態変更系のテストで使う repos 一式
type fixture struct {
	tx            *TxManagerMock
	orders        *OrderRepoMock
	orderItems    *OrderItemRepoMock
	carts         *CartRepoMock
	cartItems     *CartItemRepoMock
	products      *ProductRepoMock
	reservations  *ReservationRepoMock
	notifications *NotificationRepoMock
	audits        *AuditRepoMock
	outbox        *OutboxRepoMock
}

func newFixture() *fixture {
	f := &fixture{
		tx:            new(TxManagerMock),
		orders:        new(OrderRepoMock),
		orderItems:    new(OrderItemRepoMock),
		carts:         new(CartRepoMock),
		cartItems:     new(CartItemRepoMock),
		products:      new(ProductRepoMock),
		reservations:  new(ReservationRepoMock),
		notifications: new(NotificationRepoMock),
		audits:        new(AuditRepoMock),
		outbox:        new(OutboxRepoMock),
	}
	f.tx.Repos = &TxReposMock{
		orders:        f.orders,
		orderItems:    f.orderItems,
		carts:         f.carts,
		cartItems:     f.cartItems,
		products:      f.products,
		reservations:  f.reservations,
		notifications: f.notifications,
		auditLogs:     f.audits,
		outbox:        f.outbox,
	}
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	return f
}

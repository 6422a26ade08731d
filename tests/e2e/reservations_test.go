package e2e

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type ReservationItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type ReservationCreateRequest struct {
	Date  string                   `json:"reservation_date"`
	Time  string                   `json:"reservation_time"`
	Items []ReservationItemRequest `json:"items"`
}

type ReservationGroupItem struct {
	ReservationID int64           `json:"reservation_id"`
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int64           `json:"quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type ReservationGroup struct {
	ID                  int64                  `json:"id"`
	CustomerID          int64                  `json:"customer_id"`
	ReservationDate     string                 `json:"reservation_date"`
	ReservationTime     string                 `json:"reservation_time"`
	Status              string                 `json:"status"`
	Items               []ReservationGroupItem `json:"items"`
	TotalAmountCombined decimal.Decimal        `json:"total_amount_combined"`
}

type ReservationGroupList struct {
	Items []ReservationGroup `json:"items"`
	Total int                `json:"total"`
}

type Notification struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	RelatedID *int64 `json:"related_id"`
	IsRead    bool   `json:"is_read"`
}

// 同じお客様・日付・時刻で3商品を予約する
func reserveThreeProducts(t *testing.T, c *TestClient, ctx context.Context, admin, customer Session) ReservationGroup {
	t.Helper()

	items := make([]ReservationItemRequest, 0, 3)
	for i, price := range []string{"12.50", "30.00", "7.50"} {
		p := createProduct(t, c, ctx, admin, uniqueName("Pan"+toStr(int64(i))), price)
		items = append(items, ReservationItemRequest{ProductID: p.ID, Quantity: 1})
	}

	req := ReservationCreateRequest{
		Date:  time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
		Time:  "10:00",
		Items: items,
	}
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/reservations", customer.Access, mustMarshal(t, req))
	requireStatus(t, resp, http.StatusCreated, body)

	g := mustDecode[ReservationGroup](t, body)
	if len(g.Items) != 3 {
		t.Fatalf("created group items=%d want=3 body=%s", len(g.Items), string(body))
	}
	return g
}

// 管理画面の一覧をお客様で絞る
func adminGroupsOf(t *testing.T, c *TestClient, ctx context.Context, admin Session, customerID int64, status string) []ReservationGroup {
	t.Helper()

	path := "/admin/reservations?page=1&limit=100&customer_id=" + toStr(customerID)
	if status != "" {
		path += "&status=" + status
	}
	resp, body := c.doJSON(ctx, t, http.MethodGet, path, admin.Access, nil)
	requireStatus(t, resp, http.StatusOK, body)
	return mustDecode[ReservationGroupList](t, body).Items
}

// 3行が1グループ3明細として見える
func TestReservations_SameKeyIsOneGroup(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	admin := adminLogin(t, c, ctx)
	customer := registerCustomer(t, c, ctx)
	created := reserveThreeProducts(t, c, ctx, admin, customer)

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/reservations", customer.Access, nil)
	requireStatus(t, resp, http.StatusOK, body)
	mine := mustDecode[[]ReservationGroup](t, body)
	if len(mine) != 1 {
		t.Fatalf("customer groups=%d want=1 body=%s", len(mine), string(body))
	}
	if len(mine[0].Items) != 3 {
		t.Fatalf("customer group items=%d want=3", len(mine[0].Items))
	}
	if !mine[0].TotalAmountCombined.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("total_amount_combined=%s want=50.00", mine[0].TotalAmountCombined)
	}

	groups := adminGroupsOf(t, c, ctx, admin, customer.User.ID, "")
	if len(groups) != 1 {
		t.Fatalf("admin groups=%d want=1", len(groups))
	}
	if groups[0].ID != created.ID || len(groups[0].Items) != 3 {
		t.Fatalf("admin group=%+v want id=%d with 3 items", groups[0], created.ID)
	}
}

// どの行から変えてもグループ全体が変わり、通知は1件
func TestReservations_GroupStatusUpdatesAllRowsAndNotifiesOnce(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	admin := adminLogin(t, c, ctx)
	customer := registerCustomer(t, c, ctx)
	created := reserveThreeProducts(t, c, ctx, admin, customer)

	member := created.Items[2].ReservationID
	resp, body := c.doJSON(ctx, t, http.MethodPatch, "/admin/reservations/"+toStr(member)+"/status", admin.Access,
		mustMarshal(t, map[string]string{"status": "confirmed"}))
	requireStatus(t, resp, http.StatusOK, body)

	g := mustDecode[ReservationGroup](t, body)
	if g.Status != "confirmed" || len(g.Items) != 3 {
		t.Fatalf("updated group=%+v", g)
	}

	// status絞り込みは行単位なので、全行がconfirmedなら3明細そろう
	confirmed := adminGroupsOf(t, c, ctx, admin, customer.User.ID, "confirmed")
	if len(confirmed) != 1 || len(confirmed[0].Items) != 3 {
		t.Fatalf("confirmed groups=%+v want 1 group with 3 items", confirmed)
	}
	if pending := adminGroupsOf(t, c, ctx, admin, customer.User.ID, "pending"); len(pending) != 0 {
		t.Fatalf("pending groups=%d want=0", len(pending))
	}

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/notifications?type=reservation_confirmed", customer.Access, nil)
	requireStatus(t, resp, http.StatusOK, body)
	notes := mustDecode[[]Notification](t, body)
	if len(notes) != 1 {
		t.Fatalf("reservation_confirmed notifications=%d want=1 body=%s", len(notes), string(body))
	}
	if notes[0].RelatedID == nil || *notes[0].RelatedID != created.ID {
		t.Fatalf("related_id=%v want=%d", notes[0].RelatedID, created.ID)
	}
}

// グループ削除で全行が消える
func TestReservations_GroupDeleteRemovesAllRows(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	admin := adminLogin(t, c, ctx)
	customer := registerCustomer(t, c, ctx)
	created := reserveThreeProducts(t, c, ctx, admin, customer)

	member := created.Items[1].ReservationID
	resp, body := c.doJSON(ctx, t, http.MethodDelete, "/admin/reservations/"+toStr(member), admin.Access, nil)
	requireStatus(t, resp, http.StatusOK, body)

	res := mustDecode[map[string]any](t, body)
	if deleted, _ := res["deleted"].(float64); deleted != 3 {
		t.Fatalf("deleted=%v want=3", res["deleted"])
	}

	if groups := adminGroupsOf(t, c, ctx, admin, customer.User.ID, ""); len(groups) != 0 {
		t.Fatalf("groups after delete=%d want=0", len(groups))
	}

	// もう一度消すと404
	resp, body = c.doJSON(ctx, t, http.MethodDelete, "/admin/reservations/"+toStr(created.ID), admin.Access, nil)
	requireStatus(t, resp, http.StatusNotFound, body)
}

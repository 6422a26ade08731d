package e2e

import (
	"context"
	"net/http"
	"testing"
)

type SendNotificationRequest struct {
	UserID  int64  `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func sendNotification(t *testing.T, c *TestClient, ctx context.Context, admin Session, userID int64) {
	t.Helper()

	req := SendNotificationRequest{UserID: userID, Title: "Aviso", Message: "Tu pan está listo"}
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/admin/notifications", admin.Access, mustMarshal(t, req))
	requireStatus(t, resp, http.StatusCreated, body)
}

// 全件既読は自分の通知だけ
func TestNotifications_MarkAllReadIsScopedToUser(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	admin := adminLogin(t, c, ctx)
	ana := registerCustomer(t, c, ctx)
	luis := registerCustomer(t, c, ctx)

	for i := 0; i < 2; i++ {
		sendNotification(t, c, ctx, admin, ana.User.ID)
	}
	for i := 0; i < 3; i++ {
		sendNotification(t, c, ctx, admin, luis.User.ID)
	}

	if n := unreadCount(t, c, ctx, ana); n != 2 {
		t.Fatalf("ana unread=%d want=2", n)
	}
	before := unreadCount(t, c, ctx, luis)
	if before != 3 {
		t.Fatalf("luis unread=%d want=3", before)
	}

	resp, body := c.doJSON(ctx, t, http.MethodPatch, "/notifications/read-all", ana.Access, nil)
	requireStatus(t, resp, http.StatusOK, body)
	if updated := mustDecode[map[string]int64](t, body)["updated"]; updated != 2 {
		t.Fatalf("updated=%d want=2", updated)
	}

	if n := unreadCount(t, c, ctx, ana); n != 0 {
		t.Fatalf("ana unread after read-all=%d want=0", n)
	}
	if n := unreadCount(t, c, ctx, luis); n != before {
		t.Fatalf("luis unread changed: %d -> %d", before, n)
	}
}

// 他人の通知は既読にも削除にもできない
func TestNotifications_OtherUsersNotificationIsNotFound(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	admin := adminLogin(t, c, ctx)
	ana := registerCustomer(t, c, ctx)
	luis := registerCustomer(t, c, ctx)

	sendNotification(t, c, ctx, admin, luis.User.ID)

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/notifications", luis.Access, nil)
	requireStatus(t, resp, http.StatusOK, body)
	notes := mustDecode[[]Notification](t, body)
	if len(notes) != 1 {
		t.Fatalf("luis notifications=%d want=1", len(notes))
	}
	id := toStr(notes[0].ID)

	resp, body = c.doJSON(ctx, t, http.MethodPatch, "/notifications/"+id+"/read", ana.Access, nil)
	requireStatus(t, resp, http.StatusNotFound, body)

	resp, body = c.doJSON(ctx, t, http.MethodDelete, "/notifications/"+id, ana.Access, nil)
	requireStatus(t, resp, http.StatusNotFound, body)

	if n := unreadCount(t, c, ctx, luis); n != 1 {
		t.Fatalf("luis unread=%d want=1", n)
	}
}

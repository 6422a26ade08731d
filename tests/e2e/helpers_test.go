package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

// BASE_URLが無ければ起動中のサーバーが無いものとしてskip
func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		t.Skip("BASE_URL is not set")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New failed: %v", err)
	}

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type JwtAccessToken struct {
	AccessToken string `json:"access_token"`
}

type AuthLoginResponse struct {
	User  UserDTO        `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"is_active"`
}

type ProductCreateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"is_active"`
}

// ログイン済みのユーザー
type Session struct {
	User   UserDTO
	Access string
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	bodyBytes []byte,
) (*http.Response, []byte) {
	t.Helper()
	return c.doJSONWithHeaders(ctx, t, method, path, bearer, bodyBytes, nil)
}

func (c *TestClient) doJSONWithHeaders(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	bodyBytes []byte,
	headers map[string]string,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal(%T) failed: %v", v, err)
	}
	return b
}

func mustDecode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(%T) failed: %v body=%s", v, err, string(body))
	}
	return v
}

func toStr(v int64) string {
	return strconv.FormatInt(v, 10)
}

// 実行ごとに重ならない名前
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func login(t *testing.T, c *TestClient, ctx context.Context, email, password string) Session {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", mustMarshal(t, LoginRequest{Email: email, Password: password}))
	requireStatus(t, resp, http.StatusOK, body)

	res := mustDecode[AuthLoginResponse](t, body)
	if strings.TrimSpace(res.Token.AccessToken) == "" {
		t.Fatalf("access token is empty: body=%s", string(body))
	}
	return Session{User: res.User, Access: res.Token.AccessToken}
}

// 管理者はADMIN_EMAIL/ADMIN_PASSWORDでseedされている前提
func adminLogin(t *testing.T, c *TestClient, ctx context.Context) Session {
	t.Helper()

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("ADMIN_EMAIL / ADMIN_PASSWORD are not set")
	}
	return login(t, c, ctx, email, password)
}

// 新しいお客様を登録してログインする
func registerCustomer(t *testing.T, c *TestClient, ctx context.Context) Session {
	t.Helper()

	email := uniqueName("cliente") + "@panaderia.test"
	req := RegisterRequest{Email: email, Password: "Secreto123", FullName: "Cliente E2E", Phone: "2221234567"}

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", mustMarshal(t, req))
	requireStatus(t, resp, http.StatusCreated, body)

	return login(t, c, ctx, email, req.Password)
}

// 公開商品を作ってIDを返す
func createProduct(t *testing.T, c *TestClient, ctx context.Context, admin Session, name string, price string) Product {
	t.Helper()

	req := ProductCreateRequest{
		Name:        name,
		Description: "e2e",
		Price:       decimal.RequireFromString(price),
		IsActive:    true,
	}
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/admin/products", admin.Access, mustMarshal(t, req))
	requireStatus(t, resp, http.StatusCreated, body)

	p := mustDecode[Product](t, body)
	if p.ID <= 0 {
		t.Fatalf("product id is empty: body=%s", string(body))
	}
	return p
}

func unreadCount(t *testing.T, c *TestClient, ctx context.Context, s Session) int64 {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/notifications/unread-count", s.Access, nil)
	requireStatus(t, resp, http.StatusOK, body)
	return mustDecode[map[string]int64](t, body)["count"]
}

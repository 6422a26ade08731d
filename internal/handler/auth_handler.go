package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"bakery/internal/config"
	"bakery/internal/repository"
	"bakery/internal/usecase"
	"bakery/internal/validator"

	"github.com/labstack/echo/v4"
)

const (
	refreshCookieName = "refresh"
	csrfCookieName    = "csrf_token"
	csrfHeaderName    = "X-CSRF-Token"
	refreshCookieTTL  = 30 * 24 * time.Hour
)

type AuthHandler struct {
	uc           *usecase.AuthUsecase
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase, cookieSecure bool) *AuthHandler {
	return &AuthHandler{uc: uc, cookieSecure: cookieSecure}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout)

	me := customerGroup(e, "/auth", cfg, userRepo)
	me.GET("/me", h.me)
}

// POST /auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req usecase.AuthRegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Datos inválidos")
	}

	out, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// POST /auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req usecase.AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Datos inválidos")
	}

	// User-Agentを取得（refreshtokenに紐付ける）
	res, err := h.uc.Login(c.Request().Context(), req, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return writeAuthError(c, err)
	}

	h.setRefreshCookie(c, res.RefreshTokenPlain)
	h.setCsrfCookie(c, res.CsrfTokenPlain)

	//JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, res.Body)
}

// POST /auth/refresh はCookieのrefreshとCSRFの二重送信で検証
func (h *AuthHandler) refresh(c echo.Context) error {
	if !validCsrf(c) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "CSRF inválido"})
	}

	rc, err := c.Cookie(refreshCookieName)
	if err != nil || rc.Value == "" {
		return unauthorized(c)
	}

	res, err := h.uc.Refresh(c.Request().Context(), rc.Value, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		if errors.Is(err, usecase.ErrSecurityIncident) {
			h.clearCookies(c)
		}
		return writeAuthError(c, err)
	}

	h.setRefreshCookie(c, res.RefreshTokenPlain)
	h.setCsrfCookie(c, res.CsrfTokenPlain)
	return c.JSON(http.StatusOK, res.Body)
}

// POST /auth/logout
func (h *AuthHandler) logout(c echo.Context) error {
	if !validCsrf(c) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "CSRF inválido"})
	}

	plain := ""
	if rc, err := c.Cookie(refreshCookieName); err == nil {
		plain = rc.Value
	}

	res, err := h.uc.Logout(c.Request().Context(), plain)
	h.clearCookies(c)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GET /auth/me
func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Cookieとヘッダが一致すること
func validCsrf(c echo.Context) bool {
	ck, err := c.Cookie(csrfCookieName)
	if err != nil || ck.Value == "" {
		return false
	}
	hv := c.Request().Header.Get(csrfHeaderName)
	return hv != "" && subtle.ConstantTimeCompare([]byte(hv), []byte(ck.Value)) == 1
}

// refreshtoken をCookieにセット。
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    plainRefresh,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(refreshCookieTTL),
	})
}

// csrftokenをCookieにセット（JSから読めるようにHttpOnlyにしない）
func (h *AuthHandler) setCsrfCookie(c echo.Context, csrfToken string) {
	c.SetCookie(&http.Cookie{
		Name:     csrfCookieName,
		Value:    csrfToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(refreshCookieTTL),
	})
}

func (h *AuthHandler) clearCookies(c echo.Context) {
	for _, ck := range []*http.Cookie{
		{Name: refreshCookieName, Path: "/auth", HttpOnly: true},
		{Name: csrfCookieName, Path: "/"},
	} {
		ck.Value = ""
		ck.MaxAge = -1
		ck.Secure = h.cookieSecure
		ck.SameSite = http.SameSiteLaxMode
		c.SetCookie(ck)
	}
}

// sentinel errorをHTTPに変換
func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, validator.ErrInvalidInput), errors.Is(err, validator.ErrInvalidRefresh), errors.Is(err, usecase.ErrValidation):
		return badRequest(c, "Datos inválidos")
	case errors.Is(err, validator.ErrEmailAlreadyUsed), errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "El correo ya está registrado"})
	case errors.Is(err, usecase.ErrUnauthorized), errors.Is(err, usecase.ErrSecurityIncident):
		return unauthorized(c)
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "Cuenta desactivada"})
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Usuario no encontrado"})
	default:
		return writeError(c, err)
	}
}

package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bakery/internal/infra/cache"

	"github.com/labstack/echo/v4"
)

// レスポンス本文を控えつつそのまま返す
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// prefix:先頭セグメント:sha1(path?query)
// 先頭セグメントごとにDeletePrefixで捨てられる
func ResponseCacheKey(prefix string, c echo.Context) string {
	r := c.Request()
	segment := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)[0]
	sum := sha1.Sum([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%s:%x", prefix, segment, sum[:])
}

// 公開GETのJSONをキャッシュする。200以外は保存しない
func ResponseCache(store cache.Store, prefix string, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := ResponseCacheKey(prefix, c)

			if body, ok := store.Get(ctx, key); ok {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && cw.buf.Len() > 0 {
				_ = store.Set(context.Background(), key, cw.buf.Bytes(), ttl)
			}
			return nil
		}
	}
}

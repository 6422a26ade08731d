package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notifies件の通知を返したあと切断されるコネクション
type fakeConn struct {
	notifies int
	execErr  error
	closed   bool
	listened []string
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.listened = append(c.listened, sql)
	return pgconn.CommandTag{}, c.execErr
}

func (c *fakeConn) WaitForNotification(context.Context) (*pgconn.Notification, error) {
	if c.notifies == 0 {
		return nil, errors.New("connection reset")
	}
	c.notifies--
	return &pgconn.Notification{Channel: "outbox_events"}, nil
}

func (c *fakeConn) Close(context.Context) error {
	c.closed = true
	return nil
}

// LISTENまで行けた接続が切れたら1秒から数え直す
func TestListener_BackoffResetsAfterListen(t *testing.T) {
	ok := &fakeConn{notifies: 2}
	conns := []*fakeConn{nil, nil, ok, nil}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	notified := 0
	l := NewListener("", "outbox_events", func() { notified++ }, echo.New().Logger)

	i := 0
	l.connect = func(context.Context) (notifyConn, error) {
		if i >= len(conns) {
			return nil, context.Canceled
		}
		c := conns[i]
		i++
		if c == nil {
			return nil, errors.New("connection refused")
		}
		return c, nil
	}
	l.after = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		if len(waits) == 4 {
			cancel()
		}
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}

	require.NoError(t, l.Run(ctx))

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, time.Second, 2 * time.Second}, waits)
	assert.Equal(t, 2, notified)
	assert.True(t, ok.closed)
	assert.Equal(t, []string{`LISTEN "outbox_events"`}, ok.listened)
}

// LISTENが失敗した接続では戻さない
func TestListener_ListenFailureKeepsBackoff(t *testing.T) {
	bad := &fakeConn{execErr: errors.New("permission denied")}
	conns := []*fakeConn{nil, bad, nil}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	l := NewListener("", "outbox_events", func() {}, echo.New().Logger)

	i := 0
	l.connect = func(context.Context) (notifyConn, error) {
		if i >= len(conns) {
			return nil, context.Canceled
		}
		c := conns[i]
		i++
		if c == nil {
			return nil, errors.New("connection refused")
		}
		return c, nil
	}
	l.after = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		if len(waits) == 3 {
			cancel()
		}
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}

	require.NoError(t, l.Run(ctx))

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, waits)
	assert.True(t, bad.closed)
}

// 上限は30秒
func TestListener_BackoffCap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	l := NewListener("", "outbox_events", func() {}, echo.New().Logger)
	l.connect = func(context.Context) (notifyConn, error) {
		return nil, errors.New("connection refused")
	}
	l.after = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		if len(waits) == 7 {
			cancel()
		}
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}

	require.NoError(t, l.Run(ctx))
	assert.Equal(t, 16*time.Second, waits[4])
	assert.Equal(t, 30*time.Second, waits[5])
	assert.Equal(t, 30*time.Second, waits[6])
}

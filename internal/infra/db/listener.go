package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

const (
	listenBackoffMin = time.Second
	listenBackoffMax = 30 * time.Second
)

// *pgx.Conn のうちLISTENに使う部分
type notifyConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// LISTENする専用コネクション。gormのプールとは別に持つ
type Listener struct {
	channel  string
	onNotify func()
	log      echo.Logger
	connect  func(ctx context.Context) (notifyConn, error)
	after    func(d time.Duration) <-chan time.Time
}

func NewListener(dsn, channel string, onNotify func(), log echo.Logger) *Listener {
	l := &Listener{channel: channel, onNotify: onNotify, log: log, after: time.After}
	l.connect = func(ctx context.Context) (notifyConn, error) {
		return pgx.Connect(ctx, dsn)
	}
	return l
}

// ctxが終わるまで再接続し続ける。LISTENまで行けたら待ち時間は1秒に戻す
func (l *Listener) Run(ctx context.Context) error {
	backoff := listenBackoffMin
	for {
		listening, err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if listening {
			backoff = listenBackoffMin
		}
		l.log.Warnf("pg listener: %v; retrying in %s", err, backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-l.after(backoff):
		}
		backoff *= 2
		if backoff > listenBackoffMax {
			backoff = listenBackoffMax
		}
	}
}

// LISTENが通ったかどうかと、切れた理由を返す
func (l *Listener) listen(ctx context.Context) (bool, error) {
	conn, err := l.connect(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return false, err
	}
	l.log.Infof("pg listener: listening on %s", l.channel)

	for {
		if _, err := conn.WaitForNotification(ctx); err != nil {
			return true, err
		}
		l.onNotify()
	}
}

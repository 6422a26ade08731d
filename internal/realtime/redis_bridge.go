package realtime

import (
	"context"
	"encoding/json"

	"bakery/internal/outbox"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const bridgeChannel = "bakery:realtime"

// 複数インスタンス構成用。dispatcherはRedisへpublishし、各インスタンスが購読して自分のハブへ流す
type RedisBridge struct {
	rdb *redis.Client
	hub *Hub
	log echo.Logger
}

func NewRedisBridge(rdb *redis.Client, hub *Hub, log echo.Logger) *RedisBridge {
	return &RedisBridge{rdb: rdb, hub: hub, log: log}
}

func (b *RedisBridge) Name() string { return "redis" }

func (b *RedisBridge) Publish(ctx context.Context, env outbox.Envelope) error {
	msg, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, bridgeChannel, msg).Err()
}

// go-redisが再接続と再購読をする
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, bridgeChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var env outbox.Envelope
			if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
				b.log.Warnf("realtime: bad bridge message: %v", err)
				continue
			}
			b.hub.Deliver(env)
		}
	}
}

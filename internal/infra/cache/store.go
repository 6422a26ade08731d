package cache

import (
	"context"
	"time"
)

// Redisが無い環境ではNopStoreを使う
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool)               { return nil, false }
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopStore) DeletePrefix(context.Context, string) error               { return nil }

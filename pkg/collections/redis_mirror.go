package collections

import (
	"context"
	"time"

	"github.com/angelmondragon/salonbook-backend/pkg/redis"
)

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CollectionKey(namespace, collection string) string
}

// RedisMirror is the remote copy of every collection.
type RedisMirror struct {
	client redisKV
}

func NewRedisMirror(client redisKV) *RedisMirror {
	return &RedisMirror{client: client}
}

func (m *RedisMirror) Load(ctx context.Context, key Key) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	raw, err := m.client.Get(ctx, m.client.CollectionKey(key.Namespace, key.Collection))
	if redis.IsNil(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (m *RedisMirror) Save(ctx context.Context, key Key, payload []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	return m.client.Set(ctx, m.client.CollectionKey(key.Namespace, key.Collection), string(payload), 0)
}

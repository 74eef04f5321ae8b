package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/salonbook-backend/pkg/redis"
)

// ErrDraftNotFound is returned when a draft expired or never existed.
var ErrDraftNotFound = errors.New("booking draft not found")

// DraftStore keeps drafts between requests.
type DraftStore interface {
	Save(ctx context.Context, draft *Draft) error
	Load(ctx context.Context, tenant, id string) (*Draft, error)
	Delete(ctx context.Context, tenant, id string) error
}

type redisKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	BookingDraftKey(tenant, draftID string) string
}

// RedisDraftStore stores drafts as JSON with a sliding TTL.
type RedisDraftStore struct {
	kv  redisKV
	ttl time.Duration
}

func NewRedisDraftStore(kv redisKV, ttl time.Duration) (*RedisDraftStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("draft ttl must be positive")
	}
	return &RedisDraftStore{kv: kv, ttl: ttl}, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, draft *Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.kv.Set(ctx, s.kv.BookingDraftKey(draft.Tenant, draft.ID), string(payload), s.ttl)
}

func (s *RedisDraftStore) Load(ctx context.Context, tenant, id string) (*Draft, error) {
	raw, err := s.kv.Get(ctx, s.kv.BookingDraftKey(tenant, id))
	if redis.IsNil(err) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	if draft.Tenant != tenant {
		return nil, ErrDraftNotFound
	}
	return &draft, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, tenant, id string) error {
	return s.kv.Del(ctx, s.kv.BookingDraftKey(tenant, id))
}

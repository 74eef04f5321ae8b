package collections

import (
	"context"
	"errors"

	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

// SyncedStore writes the local store first and mirrors to the remote one on a
// best effort basis. Reads prefer local and backfill from remote on a miss.
type SyncedStore struct {
	local  Store
	remote Store
	logg   *logger.Logger
}

// NewSyncedStore returns a store that only uses local when remote is nil.
func NewSyncedStore(local, remote Store, logg *logger.Logger) (*SyncedStore, error) {
	if local == nil {
		return nil, errors.New("local store required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &SyncedStore{local: local, remote: remote, logg: logg}, nil
}

func (s *SyncedStore) Load(ctx context.Context, key Key) ([]byte, error) {
	payload, err := s.local.Load(ctx, key)
	if err == nil || !errors.Is(err, ErrNotFound) || s.remote == nil {
		return payload, err
	}

	payload, rerr := s.remote.Load(ctx, key)
	if rerr != nil {
		if !errors.Is(rerr, ErrNotFound) {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"collection": key.String(), "error": rerr.Error()}), "collections.remote_load_failed")
		}
		return nil, ErrNotFound
	}

	if berr := s.local.Save(ctx, key, payload); berr != nil {
		s.logg.Error(s.logg.WithField(ctx, "collection", key.String()), "collections.backfill_failed", berr)
	}
	return payload, nil
}

func (s *SyncedStore) Save(ctx context.Context, key Key, payload []byte) error {
	if err := s.local.Save(ctx, key, payload); err != nil {
		return err
	}
	if s.remote == nil {
		return nil
	}
	if err := s.remote.Save(ctx, key, payload); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"collection": key.String(), "error": err.Error()}), "collections.remote_save_failed")
	}
	return nil
}

package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps drafts in Redis under a namespaced key per lead.
//
// Drafts carry a TTL so abandoned composers do not accumulate forever; every
// overwrite refreshes it. Corrupt JSON reads are treated as absence.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

const defaultDraftTTL = 7 * 24 * time.Hour

func NewRedisStore(rdb *redis.Client, workspaceID string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &RedisStore{
		rdb:    rdb,
		prefix: "drafts:" + workspaceID + ":",
		ttl:    ttl,
	}
}

func (s *RedisStore) Put(ctx context.Context, key string, payload any) error {
	if s.rdb == nil || key == "" {
		return errors.New("drafts: store not configured")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.prefix+key, b, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string, out any) (bool, error) {
	if s.rdb == nil || key == "" {
		return false, nil
	}
	b, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		// Corrupt draft == no draft.
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if s.rdb == nil || key == "" {
		return nil
	}
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

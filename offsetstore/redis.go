package offsetstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
)

// progressKey is the Redis hash holding one field per subscription name.
const progressKey = "cantonstream:offsets"

// RedisStore persists offsets in a Redis hash. Monotonicity is enforced with
// a read-compare-write; concurrent writers for the same subscription name are
// not supported (the engine runs one driver per name).
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis using a redis:// connection string.
func NewRedisStore(connString string) (*RedisStore, error) {
	opts, err := redis.ParseURL(connString)
	if err != nil {
		return nil, fmt.Errorf("cantonstream: parsing redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (ledger.Offset, bool, error) {
	val, err := s.client.HGet(ctx, progressKey, name).Result()
	if err == redis.Nil {
		return ledger.Offset{}, false, nil
	}
	if err != nil {
		return ledger.Offset{}, false, err
	}

	var off ledger.Offset
	if err := off.UnmarshalText([]byte(val)); err != nil {
		return ledger.Offset{}, false, err
	}
	return off, true, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, off ledger.Offset) error {
	prev, ok, err := s.Load(ctx, name)
	if err != nil {
		return err
	}
	if ok && off.Compare(prev) <= 0 {
		return nil
	}
	return s.client.HSet(ctx, progressKey, name, off.String()).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

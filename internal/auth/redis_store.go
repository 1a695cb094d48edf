package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ RefreshStore = (*RedisStore)(nil)

const refreshKeyPrefix = "refresh:"

// RedisStore keeps refresh tokens in Redis with their TTL.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshKeyPrefix+token, userID, ttl).Err()
}

func (s *RedisStore) Redeem(ctx context.Context, token string) (int64, error) {
	val, err := s.rdb.GetDel(ctx, refreshKeyPrefix+token).Result()
	if err == redis.Nil {
		return 0, ErrUnknownRefreshToken
	}
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrUnknownRefreshToken
	}
	return userID, nil
}

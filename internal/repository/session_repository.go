package repository

import (
	"context"
	"time"

	redisapp "herbarium/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

type RedisSessionRepo struct {
	Client *redisapp.Client
}

func NewRedisSessionRepo(client *redisapp.Client) *RedisSessionRepo {
	return &RedisSessionRepo{Client: client}
}

func (r *RedisSessionRepo) SaveRefreshToken(ctx context.Context, subject, token string, exp time.Duration) error {
	return r.Client.Set(ctx, refreshTokenKey(subject, token), "1", exp).Err()
}

func (r *RedisSessionRepo) GetRefreshToken(ctx context.Context, subject, token string) (bool, error) {
	val, err := r.Client.Get(ctx, refreshTokenKey(subject, token)).Result()
	if err == redis.Nil {
		return false, nil
	}
	return val == "1", err
}

func (r *RedisSessionRepo) DeleteRefreshToken(ctx context.Context, subject, token string) error {
	return r.Client.Del(ctx, refreshTokenKey(subject, token)).Err()
}

func (r *RedisSessionRepo) DeleteAllSessions(ctx context.Context, subject string) error {
	keys, err := r.Client.Keys(ctx, refreshTokenKey(subject, "*")).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}

func refreshTokenKey(subject, token string) string {
	return "refresh:" + subject + ":" + token
}

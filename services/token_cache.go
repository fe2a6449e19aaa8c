package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/models"
)

// TokenCache lưu kết quả xác thực token. Lỗi cache không bao giờ chặn request.
type TokenCache interface {
	Get(ctx context.Context, key string) (*models.AuthUser, bool)
	Set(ctx context.Context, key string, user *models.AuthUser, ttl time.Duration)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*models.AuthUser, bool) { return nil, false }

func (noopCache) Set(context.Context, string, *models.AuthUser, time.Duration) {}

type RedisTokenCache struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewRedisTokenCache: client nil thì tắt cache
func NewRedisTokenCache(rdb *redis.Client, log *zap.Logger) TokenCache {
	if rdb == nil {
		return noopCache{}
	}
	return &RedisTokenCache{rdb: rdb, log: log}
}

func (c *RedisTokenCache) Get(ctx context.Context, key string) (*models.AuthUser, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("auth cache read failed", zap.Error(err))
		return nil, false
	}
	var user models.AuthUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, false
	}
	return &user, true
}

func (c *RedisTokenCache) Set(ctx context.Context, key string, user *models.AuthUser, ttl time.Duration) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn("auth cache write failed", zap.Error(err))
	}
}

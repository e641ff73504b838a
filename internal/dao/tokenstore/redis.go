package tokenstore

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"kama_chat_client/internal/config"
	"kama_chat_client/pkg/errorx"
)

// RedisSlot 把 token 存在 Redis 的一个 string 键里，多个终端可共享登录态
type RedisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisSlot 按配置创建 Redis 客户端，连接在首次使用时建立
func NewRedisSlot(conf *config.RedisConfig, key string) *RedisSlot {
	addr := conf.Host + ":" + strconv.Itoa(conf.Port)
	return NewRedisSlotWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.Password,
		DB:       conf.Db,
	}), key)
}

// NewRedisSlotWithClient 使用已有客户端
func NewRedisSlotWithClient(client *redis.Client, key string) *RedisSlot {
	return &RedisSlot{client: client, key: key}
}

// Load 键不存在时返回空串
func (r *RedisSlot) Load(ctx context.Context) (string, error) {
	value, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", r.key)
	}
	return value, nil
}

// Save 不设过期时间，token 本身带有效期
func (r *RedisSlot) Save(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", r.key)
	}
	return nil
}

func (r *RedisSlot) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis del key %s", r.key)
	}
	return nil
}

// Close 关闭底层连接池
func (r *RedisSlot) Close() error {
	return r.client.Close()
}

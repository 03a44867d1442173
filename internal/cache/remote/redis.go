package remote

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/finsight/chartpipe/config"
)

// Redis adapts one Redis database to the Store contract.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(cfg *config.SharedCacheCfg) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		}),
		prefix: cfg.KeyPrefix,
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		log.Warn().Err(err).Str("key", key).Msg("shared tier get degraded")
		return nil, err
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("shared tier set degraded")
		return err
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

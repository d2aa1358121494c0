// Package redisx builds the go-redis client shared by services that opt in
// through REDIS_ADDR.
package redisx

import (
	"context"
	"errors"

	"github.com/md-rashed-zaman/tutorbook/libs/config"
	"github.com/redis/go-redis/v9"
)

func Open(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func ReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if rdb == nil {
			return errors.New("redis not configured")
		}
		return rdb.Ping(ctx).Err()
	}
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/config"
	goredis "github.com/redis/go-redis/v9"
)

func ConnectToRedis(config *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         config.RedisConfig.Host,
		Password:     config.RedisConfig.Password,
		DB:           config.RedisConfig.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", config.RedisConfig.Host, err)
	}

	return client, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

type RedisCacheRepositoryImpl struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
}

func CreateNewRedisCacheRepository(client *redis.Client, cb *gobreaker.CircuitBreaker[[]byte]) CacheRepository {
	return &RedisCacheRepositoryImpl{client: client, cb: cb}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func CartChannel(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func (r *RedisCacheRepositoryImpl) GetProduct(ctx context.Context, id string) (product domain.Product, err error) {
	// a miss is not a failure as far as the breaker is concerned
	data, err := r.cb.Execute(func() ([]byte, error) {
		data, err := r.client.Get(ctx, productKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "GetProduct").Msg("product cache unavailable")
		return product, err
	}

	if data == nil {
		return product, ErrCacheMiss
	}

	if err = json.Unmarshal(data, &product); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProduct").Msg("")
		return product, err
	}

	return product, nil
}

func (r *RedisCacheRepositoryImpl) SetProduct(ctx context.Context, product domain.Product, ttl time.Duration) (err error) {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, productKey(product.ID.Hex()), data, ttl).Err()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "SetProduct").Msg("")
	}

	return err
}

func (r *RedisCacheRepositoryImpl) DeleteProduct(ctx context.Context, id string) (err error) {
	err = r.client.Del(ctx, productKey(id)).Err()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "DeleteProduct").Msg("")
	}

	return err
}

func (r *RedisCacheRepositoryImpl) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (count int64, err error) {
	count, err = r.client.Incr(ctx, key).Result()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "IncrementRateLimit").Msg("")
		return 0, err
	}

	// the window starts with the first request
	if count == 1 {
		if err = r.client.Expire(ctx, key, window).Err(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("component", "IncrementRateLimit").Msg("")
			return count, err
		}
	}

	return count, nil
}

func (r *RedisCacheRepositoryImpl) PublishCartUpdate(ctx context.Context, userID string, payload string) (err error) {
	err = r.client.Publish(ctx, CartChannel(userID), payload).Err()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "PublishCartUpdate").Msg("")
	}

	return err
}

func (r *RedisCacheRepositoryImpl) SubscribeCartUpdates(ctx context.Context, userID string) *redis.PubSub {
	return r.client.Subscribe(ctx, CartChannel(userID))
}

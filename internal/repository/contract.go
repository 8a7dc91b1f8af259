package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrCacheMiss = errors.New("cache miss")

type UserRepository interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (user domain.User, err error)
	SaveCart(ctx context.Context, userID primitive.ObjectID, cart []domain.CartLine) (err error)
	AddWishlistItem(ctx context.Context, userID primitive.ObjectID, item domain.WishlistItem) (err error)
	RemoveWishlistItem(ctx context.Context, userID primitive.ObjectID, productID primitive.ObjectID) (err error)
	ClearWishlist(ctx context.Context, userID primitive.ObjectID) (err error)
	PullProducts(ctx context.Context, productIDs []primitive.ObjectID) (modified int64, err error)
	HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ProductRepository interface {
	GetProductByID(ctx context.Context, id primitive.ObjectID) (product domain.Product, err error)
	GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) (products []domain.Product, err error)
	GetInactiveProductIDs(ctx context.Context) (ids []primitive.ObjectID, err error)
}

type CacheRepository interface {
	GetProduct(ctx context.Context, id string) (product domain.Product, err error)
	SetProduct(ctx context.Context, product domain.Product, ttl time.Duration) (err error)
	DeleteProduct(ctx context.Context, id string) (err error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (count int64, err error)
	PublishCartUpdate(ctx context.Context, userID string, payload string) (err error)
	SubscribeCartUpdates(ctx context.Context, userID string) *redis.PubSub
}

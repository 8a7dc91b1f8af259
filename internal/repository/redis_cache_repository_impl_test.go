package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	circuitbreaker "github.com/alimikegami/fashion-store/cart-service/internal/infrastructure/circuit-breaker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RedisCacheRepositoryTestSuite struct {
	suite.Suite
	server *miniredis.Miniredis
	client *redis.Client
	repo   CacheRepository
}

func (s *RedisCacheRepositoryTestSuite) SetupTest() {
	s.server = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.server.Addr()})
	s.repo = CreateNewRedisCacheRepository(s.client, circuitbreaker.CreateCircuitBreaker("test-cache", time.Minute))
}

func (s *RedisCacheRepositoryTestSuite) TearDownTest() {
	s.client.Close()
}

func (s *RedisCacheRepositoryTestSuite) TestProductRoundTrip() {
	ctx := context.Background()
	product := domain.Product{
		ID:       primitive.NewObjectID(),
		Name:     "Linen Shirt",
		Price:    1499,
		Stock:    4,
		IsActive: true,
		Sizes:    []domain.ProductSize{{Size: "M", Stock: 2}},
	}

	_, err := s.repo.GetProduct(ctx, product.ID.Hex())
	s.ErrorIs(err, ErrCacheMiss)

	s.Require().NoError(s.repo.SetProduct(ctx, product, time.Minute))

	cached, err := s.repo.GetProduct(ctx, product.ID.Hex())
	s.Require().NoError(err)
	s.Equal(product, cached)

	s.Require().NoError(s.repo.DeleteProduct(ctx, product.ID.Hex()))
	_, err = s.repo.GetProduct(ctx, product.ID.Hex())
	s.ErrorIs(err, ErrCacheMiss)
}

func (s *RedisCacheRepositoryTestSuite) TestProductExpires() {
	ctx := context.Background()
	product := domain.Product{ID: primitive.NewObjectID(), Name: "Scarf"}

	s.Require().NoError(s.repo.SetProduct(ctx, product, time.Minute))
	s.server.FastForward(2 * time.Minute)

	_, err := s.repo.GetProduct(ctx, product.ID.Hex())
	s.ErrorIs(err, ErrCacheMiss)
}

func (s *RedisCacheRepositoryTestSuite) TestIncrementRateLimit() {
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		count, err := s.repo.IncrementRateLimit(ctx, "ratelimit:cart:u1", time.Minute)
		s.Require().NoError(err)
		s.Equal(i, count)
	}

	s.True(s.server.TTL("ratelimit:cart:u1") > 0)

	s.server.FastForward(2 * time.Minute)
	count, err := s.repo.IncrementRateLimit(ctx, "ratelimit:cart:u1", time.Minute)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *RedisCacheRepositoryTestSuite) TestPublishCartUpdate() {
	ctx := context.Background()

	pubsub := s.repo.SubscribeCartUpdates(ctx, "u1")
	defer pubsub.Close()

	_, err := pubsub.Receive(ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.PublishCartUpdate(ctx, "u1", "updated"))

	select {
	case msg := <-pubsub.Channel():
		s.Equal("cart:u1", msg.Channel)
		s.Equal("updated", msg.Payload)
	case <-time.After(2 * time.Second):
		s.Fail("timed out waiting for cart update")
	}
}

func TestRedisCacheRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheRepositoryTestSuite))
}

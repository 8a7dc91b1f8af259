package service

import (
	"context"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	circuitbreaker "github.com/alimikegami/fashion-store/cart-service/internal/infrastructure/circuit-breaker"
	"github.com/alimikegami/fashion-store/cart-service/internal/repository"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
	// saveErr, when set, fails the next SaveCart call
	saveErr error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[primitive.ObjectID]domain.User{}}
}

func (r *fakeUserRepository) put(user domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
}

func (r *fakeUserRepository) get(id primitive.ObjectID) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func (r *fakeUserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.User{}, errs.ErrUserNotFound
	}
	user.Cart = append([]domain.CartLine(nil), user.Cart...)
	user.Wishlist = append([]domain.WishlistItem(nil), user.Wishlist...)
	return user, nil
}

func (r *fakeUserRepository) SaveCart(_ context.Context, userID primitive.ObjectID, cart []domain.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		err := r.saveErr
		r.saveErr = nil
		return err
	}

	user, ok := r.users[userID]
	if !ok {
		return errs.ErrUserNotFound
	}
	user.Cart = append([]domain.CartLine{}, cart...)
	r.users[userID] = user
	return nil
}

func (r *fakeUserRepository) AddWishlistItem(_ context.Context, userID primitive.ObjectID, item domain.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return errs.ErrUserNotFound
	}
	for _, existing := range user.Wishlist {
		if existing.Product == item.Product {
			return nil
		}
	}
	user.Wishlist = append(user.Wishlist, item)
	r.users[userID] = user
	return nil
}

func (r *fakeUserRepository) RemoveWishlistItem(_ context.Context, userID primitive.ObjectID, productID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return errs.ErrUserNotFound
	}
	kept := []domain.WishlistItem{}
	for _, item := range user.Wishlist {
		if item.Product != productID {
			kept = append(kept, item)
		}
	}
	user.Wishlist = kept
	r.users[userID] = user
	return nil
}

func (r *fakeUserRepository) ClearWishlist(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return errs.ErrUserNotFound
	}
	user.Wishlist = []domain.WishlistItem{}
	r.users[userID] = user
	return nil
}

func (r *fakeUserRepository) PullProducts(_ context.Context, productIDs []primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := map[primitive.ObjectID]bool{}
	for _, id := range productIDs {
		drop[id] = true
	}

	var modified int64
	for id, user := range r.users {
		cart := []domain.CartLine{}
		for _, line := range user.Cart {
			if !drop[line.Product] {
				cart = append(cart, line)
			}
		}
		wishlist := []domain.WishlistItem{}
		for _, item := range user.Wishlist {
			if !drop[item.Product] {
				wishlist = append(wishlist, item)
			}
		}
		if len(cart) != len(user.Cart) || len(wishlist) != len(user.Wishlist) {
			modified++
		}
		user.Cart = cart
		user.Wishlist = wishlist
		r.users[id] = user
	}
	return modified, nil
}

// HandleTrx restores every user when fn fails.
func (r *fakeUserRepository) HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	snapshot := make(map[primitive.ObjectID]domain.User, len(r.users))
	for id, user := range r.users {
		snapshot[id] = user
	}
	r.mu.Unlock()

	if err := fn(ctx); err != nil {
		r.mu.Lock()
		r.users = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

type fakeProductRepository struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]domain.Product
	lookups  int
	getErr   error
}

func newFakeProductRepository(products ...domain.Product) *fakeProductRepository {
	r := &fakeProductRepository{products: map[primitive.ObjectID]domain.Product{}}
	for _, product := range products {
		r.products[product.ID] = product
	}
	return r
}

func (r *fakeProductRepository) put(product domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
}

func (r *fakeProductRepository) GetProductByID(_ context.Context, id primitive.ObjectID) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lookups++
	if r.getErr != nil {
		return domain.Product{}, r.getErr
	}
	product, ok := r.products[id]
	if !ok {
		return domain.Product{}, errs.ErrProductNotFound
	}
	return product, nil
}

func (r *fakeProductRepository) GetProductsByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lookups++
	products := []domain.Product{}
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (r *fakeProductRepository) GetInactiveProductIDs(_ context.Context) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := []primitive.ObjectID{}
	for id, product := range r.products {
		if !product.IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, eventType string, key string, data interface{}) error {
	args := m.Called(ctx, eventType, key, data)
	return args.Error(0)
}

func newCacheRepository(server *miniredis.Miniredis) (repository.CacheRepository, *redis.Client) {
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return repository.CreateNewRedisCacheRepository(client, circuitbreaker.CreateCircuitBreaker("test-cache", time.Minute)), client
}

func newProduct(name string, price float64, stock int, sizes ...string) domain.Product {
	product := domain.Product{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Slug:     name,
		Price:    price,
		Stock:    stock,
		IsActive: true,
		Images:   []domain.ProductImage{{URL: "https://cdn.example.com/" + name + ".jpg"}},
	}
	for _, size := range sizes {
		product.Sizes = append(product.Sizes, domain.ProductSize{Size: size, Stock: stock})
	}
	return product
}

package controller

import (
	"context"

	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockCartService struct {
	mock.Mock
}

func (m *mockCartService) GetCart(ctx context.Context, userID string) (contract.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(contract.Cart), args.Error(1)
}

func (m *mockCartService) AddItem(ctx context.Context, userID string, req contract.AddCartItemRequest) (contract.CartItem, int, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(contract.CartItem), args.Int(1), args.Error(2)
}

func (m *mockCartService) AddItemWithin(ctx context.Context, userID string, req contract.AddCartItemRequest, fn func(ctx context.Context, userID primitive.ObjectID) error) (contract.CartItem, int, error) {
	args := m.Called(ctx, userID, req, fn)
	return args.Get(0).(contract.CartItem), args.Int(1), args.Error(2)
}

func (m *mockCartService) UpdateItem(ctx context.Context, userID string, itemID string, req contract.UpdateCartItemRequest) (contract.CartItem, error) {
	args := m.Called(ctx, userID, itemID, req)
	return args.Get(0).(contract.CartItem), args.Error(1)
}

func (m *mockCartService) RemoveItem(ctx context.Context, userID string, itemID string) (int, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Int(0), args.Error(1)
}

func (m *mockCartService) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockCartService) WatchCart(ctx context.Context, userID string) (<-chan string, func(), error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(chan string), args.Get(1).(func()), args.Error(2)
}

func (m *mockCartService) PruneInactiveItems() {
	m.Called()
}

type mockWishlistService struct {
	mock.Mock
}

func (m *mockWishlistService) GetWishlist(ctx context.Context, userID string) ([]contract.WishlistEntry, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]contract.WishlistEntry), args.Error(1)
}

func (m *mockWishlistService) AddItem(ctx context.Context, userID string, req contract.WishlistRequest) ([]contract.WishlistEntry, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).([]contract.WishlistEntry), args.Error(1)
}

func (m *mockWishlistService) RemoveItem(ctx context.Context, userID string, productID string) ([]contract.WishlistEntry, error) {
	args := m.Called(ctx, userID, productID)
	return args.Get(0).([]contract.WishlistEntry), args.Error(1)
}

func (m *mockWishlistService) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockWishlistService) MoveToCart(ctx context.Context, userID string, productID string, req contract.MoveToCartRequest) (contract.MoveToCartResponse, error) {
	args := m.Called(ctx, userID, productID, req)
	return args.Get(0).(contract.MoveToCartResponse), args.Error(1)
}

package service

import (
	"context"

	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (cart contract.Cart, err error)
	AddItem(ctx context.Context, userID string, req contract.AddCartItemRequest) (item contract.CartItem, cartCount int, err error)
	// AddItemWithin runs the add and fn in one transaction; side effects fire after commit.
	AddItemWithin(ctx context.Context, userID string, req contract.AddCartItemRequest, fn func(ctx context.Context, userID primitive.ObjectID) error) (item contract.CartItem, cartCount int, err error)
	UpdateItem(ctx context.Context, userID string, itemID string, req contract.UpdateCartItemRequest) (item contract.CartItem, err error)
	RemoveItem(ctx context.Context, userID string, itemID string) (cartCount int, err error)
	Clear(ctx context.Context, userID string) (err error)
	WatchCart(ctx context.Context, userID string) (updates <-chan string, stop func(), err error)
	PruneInactiveItems()
}

type WishlistService interface {
	GetWishlist(ctx context.Context, userID string) (entries []contract.WishlistEntry, err error)
	AddItem(ctx context.Context, userID string, req contract.WishlistRequest) (entries []contract.WishlistEntry, err error)
	RemoveItem(ctx context.Context, userID string, productID string) (entries []contract.WishlistEntry, err error)
	Clear(ctx context.Context, userID string) (err error)
	MoveToCart(ctx context.Context, userID string, productID string, req contract.MoveToCartRequest) (resp contract.MoveToCartResponse, err error)
}

type ProductCatalogService interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (product domain.Product, err error)
	GetLiveProduct(ctx context.Context, id primitive.ObjectID) (product domain.Product, err error)
	GetProducts(ctx context.Context, ids []primitive.ObjectID) (products map[primitive.ObjectID]domain.Product, err error)
	GetInactiveProductIDs(ctx context.Context) (ids []primitive.ObjectID, err error)
	ConsumeEvent(ctx context.Context)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, data interface{}) (err error)
}

package service

import (
	"context"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	"github.com/alimikegami/fashion-store/cart-service/internal/dto"
	"github.com/alimikegami/fashion-store/cart-service/internal/repository"
	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistServiceImpl struct {
	userRepo    repository.UserRepository
	catalog     ProductCatalogService
	cartService CartService
	publisher   EventPublisher
	now         func() time.Time
}

func CreateWishlistService(userRepo repository.UserRepository, catalog ProductCatalogService, cartService CartService, publisher EventPublisher) WishlistService {
	return &WishlistServiceImpl{
		userRepo:    userRepo,
		catalog:     catalog,
		cartService: cartService,
		publisher:   publisher,
		now:         time.Now,
	}
}

func (s *WishlistServiceImpl) GetWishlist(ctx context.Context, userID string) (entries []contract.WishlistEntry, err error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return
	}

	return s.load(ctx, uid)
}

// load returns the populated wishlist, hiding products that are gone or inactive.
func (s *WishlistServiceImpl) load(ctx context.Context, uid primitive.ObjectID) (entries []contract.WishlistEntry, err error) {
	user, err := s.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return
	}

	ids := make([]primitive.ObjectID, 0, len(user.Wishlist))
	for _, item := range user.Wishlist {
		ids = append(ids, item.Product)
	}

	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return
	}

	entries = make([]contract.WishlistEntry, 0, len(user.Wishlist))
	for _, item := range user.Wishlist {
		product, ok := products[item.Product]
		if !ok || !product.IsActive {
			continue
		}

		entries = append(entries, contract.WishlistEntry{
			Product: toProductSummary(product),
			AddedAt: item.AddedAt,
		})
	}

	return entries, nil
}

func (s *WishlistServiceImpl) AddItem(ctx context.Context, userID string, req contract.WishlistRequest) (entries []contract.WishlistEntry, err error) {
	if err = req.Validate(); err != nil {
		return
	}

	uid, err := parseUserID(userID)
	if err != nil {
		return
	}

	pid, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, errs.ErrProductNotFound
	}

	product, err := s.catalog.GetProduct(ctx, pid)
	if err != nil {
		return
	}
	if err = checkAvailability(product); err != nil {
		return
	}

	err = s.userRepo.AddWishlistItem(ctx, uid, domain.WishlistItem{Product: pid, AddedAt: s.now()})
	if err != nil {
		return
	}

	entries, err = s.load(ctx, uid)
	if err != nil {
		return
	}

	s.publish(ctx, dto.EventWishlistItemAdded, userID, req.ProductID, len(entries))

	return entries, nil
}

// RemoveItem is idempotent: removing a product that is not wishlisted succeeds.
func (s *WishlistServiceImpl) RemoveItem(ctx context.Context, userID string, productID string) (entries []contract.WishlistEntry, err error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return
	}

	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, errs.ErrProductNotFound
	}

	if err = s.userRepo.RemoveWishlistItem(ctx, uid, pid); err != nil {
		return
	}

	entries, err = s.load(ctx, uid)
	if err != nil {
		return
	}

	s.publish(ctx, dto.EventWishlistItemRemoved, userID, productID, len(entries))

	return entries, nil
}

func (s *WishlistServiceImpl) Clear(ctx context.Context, userID string) (err error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return
	}

	if err = s.userRepo.ClearWishlist(ctx, uid); err != nil {
		return
	}

	s.publish(ctx, dto.EventWishlistCleared, userID, "", 0)

	return nil
}

// MoveToCart adds the product to the cart and drops it from the wishlist in
// one transaction.
func (s *WishlistServiceImpl) MoveToCart(ctx context.Context, userID string, productID string, req contract.MoveToCartRequest) (resp contract.MoveToCartResponse, err error) {
	if _, err = primitive.ObjectIDFromHex(productID); err != nil {
		return resp, errs.ErrProductNotFound
	}

	item, count, err := s.cartService.AddItemWithin(ctx, userID, req.CartRequest(productID), func(ctx context.Context, uid primitive.ObjectID) error {
		pid, _ := primitive.ObjectIDFromHex(productID)
		return s.userRepo.RemoveWishlistItem(ctx, uid, pid)
	})
	if err != nil {
		return
	}

	uid, _ := parseUserID(userID)
	entries, err := s.load(ctx, uid)
	if err != nil {
		return
	}

	s.publish(ctx, dto.EventWishlistItemRemoved, userID, productID, len(entries))

	resp.CartItem = item
	resp.CartCount = count
	resp.Wishlist = entries
	resp.Count = len(entries)
	return resp, nil
}

func (s *WishlistServiceImpl) publish(ctx context.Context, eventType string, userID string, productID string, count int) {
	event := dto.WishlistEvent{
		EventID:    newEventID(),
		UserID:     userID,
		ProductID:  productID,
		Count:      count,
		OccurredAt: s.now(),
	}

	if err := s.publisher.Publish(ctx, eventType, userID, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", eventType).Msg("failed to publish wishlist event")
	}
}

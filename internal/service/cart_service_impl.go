package service

import (
	"context"
	"errors"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	"github.com/alimikegami/fashion-store/cart-service/internal/dto"
	"github.com/alimikegami/fashion-store/cart-service/internal/repository"
	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CartNotificationUpdated = "updated"
	CartNotificationCleared = "cleared"
)

type CartServiceImpl struct {
	userRepo  repository.UserRepository
	catalog   ProductCatalogService
	cache     repository.CacheRepository
	publisher EventPublisher
	now       func() time.Time
}

func CreateCartService(userRepo repository.UserRepository, catalog ProductCatalogService, cache repository.CacheRepository, publisher EventPublisher) CartService {
	return &CartServiceImpl{
		userRepo:  userRepo,
		catalog:   catalog,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}

func parseUserID(userID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return id, errs.ErrUserNotFound
	}
	return id, nil
}

func (s *CartServiceImpl) GetCart(ctx context.Context, userID string) (cart contract.Cart, err error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return
	}

	user, err := s.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return
	}

	return s.buildCart(ctx, user)
}

// buildCart populates the stored lines and drops those whose product is gone
// or inactive, persisting the pruned cart.
func (s *CartServiceImpl) buildCart(ctx context.Context, user domain.User) (cart contract.Cart, err error) {
	ids := make([]primitive.ObjectID, 0, len(user.Cart))
	for _, line := range user.Cart {
		ids = append(ids, line.Product)
	}

	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return
	}

	cart.Items = make([]contract.CartItem, 0, len(user.Cart))
	kept := make([]domain.CartLine, 0, len(user.Cart))
	for _, line := range user.Cart {
		product, ok := products[line.Product]
		if !ok || !product.IsActive {
			continue
		}

		kept = append(kept, line)
		cart.Items = append(cart.Items, toCartItem(line, product))
	}

	if len(kept) != len(user.Cart) {
		if err := s.userRepo.SaveCart(ctx, user.ID, kept); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "GetCart").Msg("failed to persist pruned cart")
		}
	}

	cart.Summary = contract.Summarize(cart.Items)
	return cart, nil
}

// loadProduct reads the product for a cart write. Stock is checked against the
// store, not the cache.
func (s *CartServiceImpl) loadProduct(ctx context.Context, productID string) (product domain.Product, err error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return product, errs.ErrProductNotFound
	}

	return s.catalog.GetLiveProduct(ctx, pid)
}

func (s *CartServiceImpl) persistAdd(ctx context.Context, uid primitive.ObjectID, req contract.AddCartItemRequest) (line domain.CartLine, product domain.Product, count int, err error) {
	if err = req.Validate(); err != nil {
		return
	}

	product, err = s.loadProduct(ctx, req.ProductID)
	if err != nil {
		return
	}

	user, err := s.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return
	}

	next, line, err := applyAdd(user.Cart, product, req, s.now())
	if err != nil {
		return
	}

	if err = s.userRepo.SaveCart(ctx, uid, next); err != nil {
		return
	}

	return line, product, cartCount(next), nil
}

func (s *CartServiceImpl) AddItem(ctx context.Context, userID string, req contract.AddCartItemRequest) (item contract.CartItem, count int, err error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return
	}

	line, product, count, err := s.persistAdd(ctx, uid, req)
	if err != nil {
		return
	}

	s.afterCartChange(ctx, userID, dto.EventCartItemAdded, CartNotificationUpdated, line, count)

	return toCartItem(line, product), count, nil
}

func (s *CartServiceImpl) AddItemWithin(ctx context.Context, userID string, req contract.AddCartItemRequest, fn func(ctx context.Context, userID primitive.ObjectID) error) (item contract.CartItem, count int, err error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return
	}

	var (
		line    domain.CartLine
		product domain.Product
	)
	err = s.userRepo.HandleTrx(ctx, func(ctx context.Context) error {
		var err error
		line, product, count, err = s.persistAdd(ctx, uid, req)
		if err != nil {
			return err
		}
		return fn(ctx, uid)
	})
	if err != nil {
		return
	}

	s.afterCartChange(ctx, userID, dto.EventCartItemAdded, CartNotificationUpdated, line, count)

	return toCartItem(line, product), count, nil
}

func (s *CartServiceImpl) UpdateItem(ctx context.Context, userID string, itemID string, req contract.UpdateCartItemRequest) (item contract.CartItem, err error) {
	if err = req.Validate(); err != nil {
		return
	}

	uid, err := parseUserID(userID)
	if err != nil {
		return
	}

	lineID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return item, errs.ErrCartItemNotFound
	}

	user, err := s.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return
	}

	idx, ok := user.FindCartLine(lineID)
	if !ok {
		return item, errs.ErrCartItemNotFound
	}

	product, err := s.catalog.GetLiveProduct(ctx, user.Cart[idx].Product)
	if err != nil {
		if errors.Is(err, errs.ErrProductNotFound) {
			return item, errs.WithDetail(errs.ErrProductNotFound, "Product not found for this cart item")
		}
		return
	}

	next, line, err := applyUpdate(user.Cart, idx, product, req)
	if err != nil {
		return
	}

	if err = s.userRepo.SaveCart(ctx, uid, next); err != nil {
		return
	}

	s.afterCartChange(ctx, userID, dto.EventCartItemUpdated, CartNotificationUpdated, line, cartCount(next))

	return toCartItem(line, product), nil
}

func (s *CartServiceImpl) RemoveItem(ctx context.Context, userID string, itemID string) (count int, err error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return
	}

	lineID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return 0, errs.ErrCartItemNotFound
	}

	user, err := s.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return
	}

	idx, ok := user.FindCartLine(lineID)
	if !ok {
		return 0, errs.ErrCartItemNotFound
	}

	removed := user.Cart[idx]
	next := removeLine(user.Cart, idx)
	if err = s.userRepo.SaveCart(ctx, uid, next); err != nil {
		return
	}

	count = cartCount(next)
	s.afterCartChange(ctx, userID, dto.EventCartItemRemoved, CartNotificationUpdated, removed, count)

	return count, nil
}

func (s *CartServiceImpl) Clear(ctx context.Context, userID string) (err error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return
	}

	if err = s.userRepo.SaveCart(ctx, uid, nil); err != nil {
		return
	}

	s.afterCartChange(ctx, userID, dto.EventCartCleared, CartNotificationCleared, domain.CartLine{}, 0)

	return nil
}

func (s *CartServiceImpl) WatchCart(ctx context.Context, userID string) (updates <-chan string, stop func(), err error) {
	pubsub := s.cache.SubscribeCartUpdates(ctx, userID)

	// wait for the subscription to be confirmed so no update is missed
	if _, err = pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { pubsub.Close() }, nil
}

// PruneInactiveItems removes deactivated products from every cart and
// wishlist. It runs as a scheduled job.
func (s *CartServiceImpl) PruneInactiveItems() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ids, err := s.catalog.GetInactiveProductIDs(ctx)
	if err != nil {
		log.Error().Err(err).Str("component", "PruneInactiveItems").Msg("")
		return
	}

	modified, err := s.userRepo.PullProducts(ctx, ids)
	if err != nil {
		log.Error().Err(err).Str("component", "PruneInactiveItems").Msg("")
		return
	}

	if modified > 0 {
		log.Info().Int64("users", modified).Int("products", len(ids)).Msg("pruned inactive products")
	}
}

func (s *CartServiceImpl) afterCartChange(ctx context.Context, userID string, eventType string, notification string, line domain.CartLine, count int) {
	s.cache.PublishCartUpdate(ctx, userID, notification)

	event := dto.CartEvent{
		EventID:    newEventID(),
		UserID:     userID,
		CartCount:  count,
		OccurredAt: s.now(),
	}
	if !line.ID.IsZero() {
		event.ItemID = line.ID.Hex()
		event.ProductID = line.Product.Hex()
		event.Quantity = line.Quantity
		event.Size = line.Size
		event.Color = line.Color
	}

	if err := s.publisher.Publish(ctx, eventType, userID, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", eventType).Msg("failed to publish cart event")
	}
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	"github.com/alimikegami/fashion-store/cart-service/internal/dto"
	"github.com/alimikegami/fashion-store/cart-service/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type ProductCatalogServiceImpl struct {
	productRepo repository.ProductRepository
	cache       repository.CacheRepository
	kafkaReader MessageReader
	cacheTTL    time.Duration
}

func CreateProductCatalogService(productRepo repository.ProductRepository, cache repository.CacheRepository, kafkaReader MessageReader, cacheTTL time.Duration) ProductCatalogService {
	return &ProductCatalogServiceImpl{productRepo: productRepo, cache: cache, kafkaReader: kafkaReader, cacheTTL: cacheTTL}
}

func (s *ProductCatalogServiceImpl) GetProduct(ctx context.Context, id primitive.ObjectID) (product domain.Product, err error) {
	product, err = s.cache.GetProduct(ctx, id.Hex())
	if err == nil {
		return product, nil
	}

	product, err = s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return
	}

	s.cache.SetProduct(ctx, product, s.cacheTTL)

	return product, nil
}

// GetLiveProduct reads the product from the store, bypassing the cache, and
// refreshes the cached copy. Cart writes validate stock against it.
func (s *ProductCatalogServiceImpl) GetLiveProduct(ctx context.Context, id primitive.ObjectID) (product domain.Product, err error) {
	product, err = s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return
	}

	s.cache.SetProduct(ctx, product, s.cacheTTL)

	return product, nil
}

func (s *ProductCatalogServiceImpl) GetProducts(ctx context.Context, ids []primitive.ObjectID) (products map[primitive.ObjectID]domain.Product, err error) {
	products = make(map[primitive.ObjectID]domain.Product, len(ids))

	var misses []primitive.ObjectID
	for _, id := range ids {
		if _, seen := products[id]; seen {
			continue
		}

		product, err := s.cache.GetProduct(ctx, id.Hex())
		if err != nil {
			misses = append(misses, id)
			continue
		}
		products[id] = product
	}

	if len(misses) == 0 {
		return products, nil
	}

	fetched, err := s.productRepo.GetProductsByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}

	for _, product := range fetched {
		products[product.ID] = product
		s.cache.SetProduct(ctx, product, s.cacheTTL)
	}

	return products, nil
}

func (s *ProductCatalogServiceImpl) GetInactiveProductIDs(ctx context.Context) (ids []primitive.ObjectID, err error) {
	ids, err = s.productRepo.GetInactiveProductIDs(ctx)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		s.cache.DeleteProduct(ctx, id.Hex())
	}

	return ids, nil
}

// ConsumeEvent evicts cached products when the product command service
// reports a change. It returns once ctx is done.
func (s *ProductCatalogServiceImpl) ConsumeEvent(ctx context.Context) {
	for {
		msg, err := s.kafkaReader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			log.Error().Err(err).Str("component", "ConsumeEvent").Msg("")
			continue
		}

		var receivedMsg dto.KafkaMessage
		if err := json.Unmarshal(msg.Value, &receivedMsg); err != nil {
			log.Error().Err(err).Str("component", "ConsumeEvent").Msg("")
			continue
		}

		switch receivedMsg.EventType {
		case dto.EventProductAdded, dto.EventProductUpdated, dto.EventProductDeleted:
			var event dto.ProductEvent
			if err := decodeEventData(receivedMsg.Data, &event); err != nil || event.ID == "" {
				log.Error().Err(err).Str("component", "ConsumeEvent").Msg("product event without id")
				continue
			}

			s.cache.DeleteProduct(ctx, event.ID)
			log.Debug().Str("event_type", receivedMsg.EventType).Str("product_id", event.ID).Msg("product cache evicted")
		case dto.EventProductStockDecreased, dto.EventProductStockRestored:
			var events []dto.ProductEvent
			if err := decodeEventData(receivedMsg.Data, &events); err != nil {
				log.Error().Err(err).Str("component", "ConsumeEvent").Msg("")
				continue
			}

			for _, event := range events {
				if event.ID == "" {
					continue
				}
				s.cache.DeleteProduct(ctx, event.ID)
			}
			log.Debug().Str("event_type", receivedMsg.EventType).Int("products", len(events)).Msg("product cache evicted")
		default:
			log.Debug().Str("event_type", receivedMsg.EventType).Msg("ignoring event")
		}
	}
}

func decodeEventData(data interface{}, out interface{}) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(dataBytes, out)
}

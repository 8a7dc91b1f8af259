package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/alimikegami/fashion-store/cart-service/internal/dto"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeReader replays queued messages and then blocks until ctx is done.
type fakeReader struct {
	messages chan kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-r.messages:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func productEventMessage(t *testing.T, eventType string, id string) kafka.Message {
	value, err := json.Marshal(dto.KafkaMessage{EventType: eventType, Data: dto.ProductEvent{ID: id}})
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestGetProductReadsThroughCache(t *testing.T) {
	cache, client := newCacheRepository(miniredis.RunT(t))
	defer client.Close()

	product := newProduct("skirt", 700, 8)
	products := newFakeProductRepository(product)
	catalog := CreateProductCatalogService(products, cache, nil, time.Minute)

	got, err := catalog.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "skirt", got.Name)

	got, err = catalog.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	assert.Equal(t, 1, products.lookups)

	_, err = catalog.GetProduct(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, errs.ErrProductNotFound)
}

func TestGetLiveProductBypassesCache(t *testing.T) {
	cache, client := newCacheRepository(miniredis.RunT(t))
	defer client.Close()

	product := newProduct("blazer", 1200, 6)
	products := newFakeProductRepository(product)
	catalog := CreateProductCatalogService(products, cache, nil, time.Minute)

	_, err := catalog.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)

	product.Stock = 1
	products.put(product)

	got, err := catalog.GetLiveProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
	assert.Equal(t, 2, products.lookups)

	cached, err := catalog.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Stock)
	assert.Equal(t, 2, products.lookups)

	_, err = catalog.GetLiveProduct(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, errs.ErrProductNotFound)
}

func TestGetProductsBatchesMisses(t *testing.T) {
	cache, client := newCacheRepository(miniredis.RunT(t))
	defer client.Close()

	first := newProduct("tee", 250, 3)
	second := newProduct("hoodie", 900, 3)
	products := newFakeProductRepository(first, second)
	catalog := CreateProductCatalogService(products, cache, nil, time.Minute)

	_, err := catalog.GetProduct(context.Background(), first.ID)
	require.NoError(t, err)

	found, err := catalog.GetProducts(context.Background(), []primitive.ObjectID{first.ID, second.ID, first.ID, primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "hoodie", found[second.ID].Name)
	// one lookup for GetProduct and one batched lookup for the misses
	assert.Equal(t, 2, products.lookups)

	found, err = catalog.GetProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestConsumeEventEvictsProducts(t *testing.T) {
	server := miniredis.RunT(t)
	cache, client := newCacheRepository(server)
	defer client.Close()

	product := newProduct("jacket", 1800, 2)
	products := newFakeProductRepository(product)
	reader := &fakeReader{messages: make(chan kafka.Message, 4)}
	catalog := CreateProductCatalogService(products, cache, reader, time.Minute)

	_, err := catalog.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	require.True(t, server.Exists("product:"+product.ID.Hex()))

	reader.messages <- kafka.Message{Value: []byte("not json")}
	reader.messages <- productEventMessage(t, "stock_reserved", product.ID.Hex())
	reader.messages <- productEventMessage(t, dto.EventProductUpdated, product.ID.Hex())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		catalog.ConsumeEvent(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return !server.Exists("product:" + product.ID.Hex())
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ConsumeEvent did not return after cancel")
	}
}

func TestConsumeEventEvictsOnStockChanges(t *testing.T) {
	server := miniredis.RunT(t)
	cache, client := newCacheRepository(server)
	defer client.Close()

	sold := newProduct("scarf", 400, 9)
	returned := newProduct("beanie", 350, 4)
	products := newFakeProductRepository(sold, returned)
	reader := &fakeReader{messages: make(chan kafka.Message, 2)}
	catalog := CreateProductCatalogService(products, cache, reader, time.Minute)

	_, err := catalog.GetProducts(context.Background(), []primitive.ObjectID{sold.ID, returned.ID})
	require.NoError(t, err)
	require.True(t, server.Exists("product:"+sold.ID.Hex()))
	require.True(t, server.Exists("product:"+returned.ID.Hex()))

	stockMessage := func(eventType string, ids ...string) kafka.Message {
		events := make([]dto.ProductEvent, 0, len(ids))
		for _, id := range ids {
			events = append(events, dto.ProductEvent{ID: id})
		}
		value, err := json.Marshal(dto.KafkaMessage{EventType: eventType, Data: events})
		require.NoError(t, err)
		return kafka.Message{Value: value}
	}
	reader.messages <- stockMessage(dto.EventProductStockDecreased, sold.ID.Hex(), "")
	reader.messages <- stockMessage(dto.EventProductStockRestored, returned.ID.Hex())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go catalog.ConsumeEvent(ctx)

	assert.Eventually(t, func() bool {
		return !server.Exists("product:"+sold.ID.Hex()) && !server.Exists("product:"+returned.ID.Hex())
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGetInactiveProductIDsEvictsCache(t *testing.T) {
	server := miniredis.RunT(t)
	cache, client := newCacheRepository(server)
	defer client.Close()

	product := newProduct("loafers", 1500, 1)
	products := newFakeProductRepository(product)
	catalog := CreateProductCatalogService(products, cache, nil, time.Minute)

	_, err := catalog.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)

	product.IsActive = false
	products.put(product)

	ids, err := catalog.GetInactiveProductIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{product.ID}, ids)
	assert.False(t, server.Exists("product:"+product.ID.Hex()))
}

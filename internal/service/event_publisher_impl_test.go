package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alimikegami/fashion-store/cart-service/internal/dto"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	calls    int
	written  []kafka.Message
}

func (w *fakeWriter) WriteMessages(msgs ...kafka.Message) (int, error) {
	w.calls++
	if w.calls <= w.failures {
		return 0, errors.New("leader not available")
	}
	w.written = append(w.written, msgs...)
	return len(msgs), nil
}

func TestPublishWritesEnvelope(t *testing.T) {
	writer := &fakeWriter{}
	publisher := CreateKafkaEventPublisher(writer, 3, 0)

	err := publisher.Publish(context.Background(), dto.EventCartCleared, "user-1", dto.CartEvent{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)
	assert.Equal(t, []byte("user-1"), writer.written[0].Key)

	var msg struct {
		EventType string        `json:"event_type"`
		Data      dto.CartEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(writer.written[0].Value, &msg))
	assert.Equal(t, dto.EventCartCleared, msg.EventType)
	assert.Equal(t, "user-1", msg.Data.UserID)
}

func TestPublishRetries(t *testing.T) {
	writer := &fakeWriter{failures: 2}
	publisher := CreateKafkaEventPublisher(writer, 3, 0)

	err := publisher.Publish(context.Background(), dto.EventCartItemAdded, "user-1", dto.CartEvent{})
	require.NoError(t, err)
	assert.Equal(t, 3, writer.calls)
}

func TestPublishGivesUp(t *testing.T) {
	writer := &fakeWriter{failures: 5}
	publisher := CreateKafkaEventPublisher(writer, 3, 0)

	err := publisher.Publish(context.Background(), dto.EventCartItemAdded, "user-1", dto.CartEvent{})
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, 3, writer.calls)
	assert.Empty(t, writer.written)
}

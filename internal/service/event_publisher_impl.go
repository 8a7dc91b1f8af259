package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/internal/dto"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Conn.
type MessageWriter interface {
	WriteMessages(msgs ...kafka.Message) (int, error)
}

type KafkaEventPublisherImpl struct {
	producer   MessageWriter
	maxRetries int
	backoff    time.Duration
}

func CreateKafkaEventPublisher(producer MessageWriter, maxRetries int, backoff time.Duration) EventPublisher {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &KafkaEventPublisherImpl{producer: producer, maxRetries: maxRetries, backoff: backoff}
}

func (p *KafkaEventPublisherImpl) Publish(ctx context.Context, eventType string, key string, data interface{}) (err error) {
	jsonMsg, err := json.Marshal(dto.KafkaMessage{
		EventType: eventType,
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Kafka message: %w", err)
	}

	for i := 0; i < p.maxRetries; i++ {
		_, err = p.producer.WriteMessages(kafka.Message{
			Key:   []byte(key),
			Value: jsonMsg,
		})
		if err == nil {
			return nil
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "Publish").Int("attempt", i+1).Msg("")
		if i < p.maxRetries-1 {
			time.Sleep(p.backoff * time.Duration(i+1))
		}
	}

	return fmt.Errorf("failed to write Kafka message after %d attempts: %w", p.maxRetries, err)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateNewConfigDefaults(t *testing.T) {
	t.Setenv("CART_RATE_LIMIT", "")
	t.Setenv("PRUNE_INTERVAL", "")
	t.Setenv("BROKER_TOPIC", "")
	t.Setenv("DB_NAME", "")

	conf := CreateNewConfig()

	assert.Equal(t, 20, conf.CartConfig.RateLimitPerMinute)
	assert.Equal(t, 15*time.Minute, conf.CartConfig.PruneInterval)
	assert.Equal(t, "cart-events", conf.KafkaConfig.BrokerTopic)
	assert.Equal(t, "fashion_store", conf.MongoDBConfig.DBName)
}

func TestCreateNewConfigFromEnv(t *testing.T) {
	t.Setenv("SERVICE_PORT", "8081")
	t.Setenv("CART_RATE_LIMIT", "5")
	t.Setenv("PRUNE_INTERVAL", "30s")
	t.Setenv("BROKER_PARTITION", "2")

	conf := CreateNewConfig()

	assert.Equal(t, "8081", conf.ServicePort)
	assert.Equal(t, 5, conf.CartConfig.RateLimitPerMinute)
	assert.Equal(t, 30*time.Second, conf.CartConfig.PruneInterval)
	assert.Equal(t, 2, conf.KafkaConfig.BrokerPartition)
}

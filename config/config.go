package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServicePort   string
	MetricsPort   string
	Environment   string
	MongoDBConfig MongoDBConfig
	RedisConfig   RedisConfig
	KafkaConfig   KafkaConfig
	JWTSecret     string
	TracingConfig TracingConfig
	CartConfig    CartConfig
}

type MongoDBConfig struct {
	DBHost string
	DBPort string
	DBName string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type KafkaConfig struct {
	BrokerAddress      string
	BrokerTopic        string
	BrokerPartition    int
	ProductEventsTopic string
}

type TracingConfig struct {
	CollectorHost string
}

type CartConfig struct {
	RateLimitPerMinute int
	PruneInterval      time.Duration
	ProductCacheTTL    time.Duration
}

func CreateNewConfig() *Config {
	godotenv.Load(".env")

	conf := Config{
		ServicePort: os.Getenv("SERVICE_PORT"),
		MetricsPort: os.Getenv("METRICS_PORT"),
		Environment: os.Getenv("ENVIRONMENT"),
		MongoDBConfig: MongoDBConfig{
			DBHost: os.Getenv("DB_HOST"),
			DBPort: os.Getenv("DB_PORT"),
			DBName: getEnvOrDefault("DB_NAME", "fashion_store"),
		},
		RedisConfig: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		KafkaConfig: KafkaConfig{
			BrokerAddress:      os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:        getEnvOrDefault("BROKER_TOPIC", "cart-events"),
			BrokerPartition:    getIntEnv("BROKER_PARTITION", 0),
			ProductEventsTopic: getEnvOrDefault("PRODUCT_EVENTS_TOPIC", "product-events"),
		},
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
		},
		CartConfig: CartConfig{
			RateLimitPerMinute: getIntEnv("CART_RATE_LIMIT", 20),
			PruneInterval:      getDurationEnv("PRUNE_INTERVAL", 15*time.Minute),
			ProductCacheTTL:    getDurationEnv("PRODUCT_CACHE_TTL", 10*time.Minute),
		},
	}

	return &conf
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

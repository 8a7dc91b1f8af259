package main

import (
	"fmt"
	"log"

	"github.com/alimikegami/fashion-store/cart-service/config"
	"github.com/alimikegami/fashion-store/cart-service/internal/app"
	"github.com/alimikegami/fashion-store/cart-service/internal/infrastructure/cache/redis"
	"github.com/alimikegami/fashion-store/cart-service/internal/infrastructure/database/mongodb"
)

func main() {
	config := config.CreateNewConfig()

	db, err := mongodb.ConnectToMongoDB(fmt.Sprintf("mongodb://%s:%s", config.MongoDBConfig.DBHost, config.MongoDBConfig.DBPort), config.MongoDBConfig.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}

	redisClient, err := redis.ConnectToRedis(config)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	server := app.App{
		DB:     db,
		Redis:  redisClient,
		Config: config,
	}

	server.Start()
}

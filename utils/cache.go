// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"salonflow/config"
)

var (
	// SessionCacheClient backs the booking-session store.
	SessionCacheClient *redis.Client
	// OfferCacheClient backs the per-slot waitlist offer locks.
	OfferCacheClient *redis.Client
)

// InitSessionCache initializes the Redis client for booking sessions.
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SessionCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Session Cache): %v", err)
	}
}

// GetSessionCacheClient returns the Redis client for booking sessions.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// InitOfferCache initializes the Redis client for waitlist offer locks.
func InitOfferCache() {
	OfferCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisOfferDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := OfferCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Offer Cache): %v", err)
	}
}

// GetOfferCacheClient returns the Redis client for waitlist offer locks.
func GetOfferCacheClient() *redis.Client {
	if OfferCacheClient == nil {
		InitOfferCache()
	}
	return OfferCacheClient
}

// InitRedis initializes all Redis clients used by the service.
func InitRedis() {
	InitSessionCache()
	InitOfferCache()
}

// Package cache wraps the Redis client used for list caching and rate limiting.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// InitRedis connects to Redis. The application degrades gracefully when
// Redis is unreachable: Client stays nil and all cache helpers no-op.
func InitRedis(addr string) {
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		Client = nil
	} else {
		log.Println("Redis connected successfully")
	}
}

// GetClient returns the shared client, or nil when Redis is unavailable.
func GetClient() *redis.Client {
	return Client
}

func Close() {
	if Client != nil {
		if err := Client.Close(); err != nil {
			log.Printf("Error closing Redis: %v", err)
		}
	}
}

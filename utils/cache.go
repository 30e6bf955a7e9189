// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"institute/config"

	"github.com/go-redis/redis/v8"
)

// AuthCacheClient is the dedicated client for authorization caching.
var AuthCacheClient *redis.Client

// InitAuthCache initializes the Redis client for authorization caching.
func InitAuthCache() {
	AuthCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAuthDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := AuthCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Auth Cache): %v", err)
	}
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

const authTokenPrefix = "authToken:"

// CacheAuthToken stores the hash of an issued token so middleware can
// confirm it has not been revoked.
func CacheAuthToken(client *redis.Client, subjectID, tokenHash string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Set(ctx, authTokenPrefix+subjectID, tokenHash, ttl).Err()
}

// AuthTokenValid reports whether the supplied token hash matches the cached one.
func AuthTokenValid(client *redis.Client, subjectID, tokenHash string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cached, err := client.Get(ctx, authTokenPrefix+subjectID).Result()
	if err != nil {
		return false
	}
	return cached == tokenHash
}

// RevokeAuthToken drops the cached token hash for a subject.
func RevokeAuthToken(client *redis.Client, subjectID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Del(ctx, authTokenPrefix+subjectID).Err()
}

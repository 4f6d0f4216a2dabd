package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"asset-aggregator/conf"
)

var RedisClient *redis.Client

// InitRedis initialize Redis client, nil client when disabled
func InitRedis(cfg conf.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		log.Info("Redis is disabled, rate limits stay process-local")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnf("⚠️  Failed to connect to Redis: %v", err)
		client.Close()
		return nil, err
	}

	RedisClient = client
	log.Infof("✅ Redis connected successfully: %s:%d (DB: %d)", cfg.Host, cfg.Port, cfg.DB)
	return client, nil
}

// CloseRedis close Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		err := RedisClient.Close()
		RedisClient = nil
		return err
	}
	return nil
}

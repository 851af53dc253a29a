package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/toolkits/pkg/logger"
)

type RedisConfig struct {
	Address          string
	Username         string
	Password         string
	DB               int
	RedisType        string
	MasterName       string
	SentinelUsername string
	SentinelPassword string
}

// Redis is the client handle shared by the bus and the peer registry.
// UniversalClient rather than Cmdable because Pub/Sub needs Subscribe.
type Redis redis.UniversalClient

func NewRedis(cfg RedisConfig) (Redis, error) {
	var redisClient Redis

	switch cfg.RedisType {
	case "standalone", "":
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

	case "cluster":
		redisClient = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    strings.Split(cfg.Address, ","),
			Username: cfg.Username,
			Password: cfg.Password,
		})

	case "sentinel":
		redisClient = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.MasterName,
			SentinelAddrs:    strings.Split(cfg.Address, ","),
			Username:         cfg.Username,
			Password:         cfg.Password,
			DB:               cfg.DB,
			SentinelUsername: cfg.SentinelUsername,
			SentinelPassword: cfg.SentinelPassword,
		})

	default:
		fmt.Println("failed to init redis , redis type is illegal:", cfg.RedisType)
		os.Exit(1)
	}

	err := redisClient.Ping(context.Background()).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis: %v", err)
	}

	return redisClient, nil
}

// MGet fetches multiple keys through one pipeline, skipping misses.
func MGet(ctx context.Context, r Redis, keys []string) [][]byte {
	var vals [][]byte
	pipe := r.Pipeline()
	for _, key := range keys {
		pipe.Get(ctx, key)
	}
	cmds, _ := pipe.Exec(ctx)

	for i, key := range keys {
		cmd := cmds[i]
		if errors.Is(cmd.Err(), redis.Nil) {
			continue
		}

		if cmd.Err() != nil {
			logger.Errorf("failed to get key: %s, err: %s", key, cmd.Err())
			continue
		}
		val := []byte(cmd.(*redis.StringCmd).Val())
		vals = append(vals, val)
	}

	return vals
}

func Scan(ctx context.Context, r Redis, cursor uint64, match string, count int64) ([]string, uint64, error) {
	return r.Scan(ctx, cursor, match, count).Result()
}

func MDel(ctx context.Context, r Redis, keys ...string) error {
	pipe := r.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	_, err := pipe.Exec(ctx)
	return err
}

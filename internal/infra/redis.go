package infra

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

// conexionesHTTP is the pool headroom left for request handlers and the
// dispatcher once every worker is parked on BRPOP.
const conexionesHTTP = 8

// NewRedis parses redisURL, sizes the pool for workers blocking consumers
// and checks connectivity.
func NewRedis(redisURL string, workers int) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL inválida: %w", err)
	}
	tam := opts.PoolSize
	if tam == 0 {
		tam = 10 * runtime.GOMAXPROCS(0) // go-redis default
	}
	opts.PoolSize = max(tam, workers+conexionesHTTP)

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis no responde: %w", err)
	}
	return rdb, nil
}

package serverstate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stateKey     = "voxgate:state"
	redisTimeout = 3 * time.Second
)

// redisStore shares the lifecycle State between gateway replicas
// through a single Redis key.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr and seeds the state key when it does
// not exist yet. addr may be a bare host:port or a redis:// / rediss://
// URL with optional password and database.
func NewRedisStore(addr string) (*redisStore, error) {
	if !strings.Contains(addr, "://") {
		addr = "redis://" + addr
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	c := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	seed, _ := json.Marshal(State{Status: "not_ready"})
	if err := c.SetNX(ctx, stateKey, seed, 0).Err(); err != nil {
		return nil, fmt.Errorf("redis: seed state: %w", err)
	}
	return &redisStore{client: c}, nil
}

func (r *redisStore) Load() State {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	b, err := r.client.Get(ctx, stateKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return State{Status: "not_ready"}
		}
		return State{Status: "unknown"}
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return State{Status: "unknown"}
	}
	return st
}

func (r *redisStore) Store(s State) {
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	_ = r.client.Set(ctx, stateKey, b, 0).Err()
}

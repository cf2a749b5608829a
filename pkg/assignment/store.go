package assignment

import (
	"context"
	"fmt"
	"sync"

	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "leadflow:assignment:"

// Store keeps the round robin cursors and per-user assignment counts.
type Store interface {
	// Next increments the cursor of key and returns the new value, starting at 1.
	Next(ctx context.Context, key string) (int64, error)
	// Loads returns the assignment count of each member, in member order.
	Loads(ctx context.Context, key string, members []string) ([]int64, error)
	// Assigned adds one assignment to member.
	Assigned(ctx context.Context, key, member string) error
}

type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromURL parses a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStore(client), nil
}

func (s *RedisStore) Next(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, keyPrefix+"cursor:"+key).Result()
}

func (s *RedisStore) Loads(ctx context.Context, key string, members []string) ([]int64, error) {
	loads := make([]int64, len(members))
	if len(members) == 0 {
		return loads, nil
	}

	scores, err := s.client.ZMScore(ctx, keyPrefix+"load:"+key, members...).Result()
	if err != nil {
		return nil, err
	}

	for i, score := range scores {
		loads[i] = int64(score)
	}

	return loads, nil
}

func (s *RedisStore) Assigned(ctx context.Context, key, member string) error {
	return s.client.ZIncrBy(ctx, keyPrefix+"load:"+key, 1, member).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	cursors map[string]int64
	loads   map[string]map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cursors: make(map[string]int64),
		loads:   make(map[string]map[string]int64),
	}
}

func (s *MemoryStore) Next(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors[key]++

	return s.cursors[key], nil
}

func (s *MemoryStore) Loads(_ context.Context, key string, members []string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loads := make([]int64, len(members))
	for i, member := range members {
		loads[i] = s.loads[key][member]
	}

	return loads, nil
}

func (s *MemoryStore) Assigned(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loads[key] == nil {
		s.loads[key] = make(map[string]int64)
	}

	s.loads[key][member]++

	return nil
}

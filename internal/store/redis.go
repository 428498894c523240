package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kuflow/kuflow-sdk-go/internal/config"
	"github.com/kuflow/kuflow-sdk-go/internal/metrics"
)

// RedisStore keeps each document in a string key and the insertion order
// of every kind in a list.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.KeyPrefix), nil
}

func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "kuflow"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) docKey(kind Kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.keyPrefix, kind, id)
}

func (s *RedisStore) indexKey(kind Kind) string {
	return fmt.Sprintf("%s:%s:index", s.keyPrefix, kind)
}

func (s *RedisStore) Create(ctx context.Context, kind Kind, id string, data []byte) (bool, error) {
	defer s.observe("create", time.Now())

	created, err := s.client.SetNX(ctx, s.docKey(kind, id), data, 0).Result()
	if err != nil {
		metrics.RecordStoreError("redis", "create")
		return false, fmt.Errorf("failed to create %s %s: %w", kind, id, err)
	}
	if !created {
		return false, nil
	}

	if err := s.client.RPush(ctx, s.indexKey(kind), id).Err(); err != nil {
		s.client.Del(ctx, s.docKey(kind, id)) // Cleanup on failure
		metrics.RecordStoreError("redis", "create")
		return false, fmt.Errorf("failed to index %s %s: %w", kind, id, err)
	}
	return true, nil
}

func (s *RedisStore) Put(ctx context.Context, kind Kind, id string, data []byte) error {
	defer s.observe("put", time.Now())

	created, err := s.Create(ctx, kind, id, data)
	if err != nil {
		return err
	}
	if created {
		return nil
	}

	if err := s.client.Set(ctx, s.docKey(kind, id), data, 0).Err(); err != nil {
		metrics.RecordStoreError("redis", "put")
		return fmt.Errorf("failed to store %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, kind Kind, id string) ([]byte, error) {
	defer s.observe("get", time.Now())

	data, err := s.client.Get(ctx, s.docKey(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("redis", "get")
		return nil, fmt.Errorf("failed to get %s %s: %w", kind, id, err)
	}
	return data, nil
}

func (s *RedisStore) List(ctx context.Context, kind Kind) ([][]byte, error) {
	defer s.observe("list", time.Now())

	ids, err := s.client.LRange(ctx, s.indexKey(kind), 0, -1).Result()
	if err != nil {
		metrics.RecordStoreError("redis", "list")
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	if len(ids) == 0 {
		return [][]byte{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(kind, id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		metrics.RecordStoreError("redis", "list")
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}

	out := make([][]byte, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// Document removed behind our back
			continue
		}
		out = append(out, []byte(str))
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) observe(operation string, start time.Time) {
	metrics.RecordStoreOperation("redis", operation, time.Since(start).Seconds())
}

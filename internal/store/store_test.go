package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuflow/kuflow-sdk-go/internal/config"
)

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			s := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStore_CreateIsIdempotent(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			created, err := s.Create(ctx, KindProcess, "p-1", []byte(`{"v":1}`))
			require.NoError(t, err)
			assert.True(t, created)

			created, err = s.Create(ctx, KindProcess, "p-1", []byte(`{"v":2}`))
			require.NoError(t, err)
			assert.False(t, created)

			data, err := s.Get(ctx, KindProcess, "p-1")
			require.NoError(t, err)
			assert.JSONEq(t, `{"v":1}`, string(data))
		})
	}
}

func TestStore_PutReplaces(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			require.NoError(t, s.Put(ctx, KindTask, "t-1", []byte(`{"state":"READY"}`)))
			require.NoError(t, s.Put(ctx, KindTask, "t-1", []byte(`{"state":"CLAIMED"}`)))

			data, err := s.Get(ctx, KindTask, "t-1")
			require.NoError(t, err)
			assert.JSONEq(t, `{"state":"CLAIMED"}`, string(data))

			all, err := s.List(ctx, KindTask)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestStore_GetNotFound(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)

			_, err := s.Get(context.Background(), KindWorker, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_ListKeepsInsertionOrder(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			empty, err := s.List(ctx, KindPrincipal)
			require.NoError(t, err)
			assert.Empty(t, empty)

			for i := 0; i < 3; i++ {
				_, err := s.Create(ctx, KindPrincipal, fmt.Sprintf("id-%d", i), []byte(fmt.Sprintf(`{"n":%d}`, i)))
				require.NoError(t, err)
			}
			_, err = s.Create(ctx, KindTask, "other-kind", []byte(`{}`))
			require.NoError(t, err)

			all, err := s.List(ctx, KindPrincipal)
			require.NoError(t, err)
			require.Len(t, all, 3)
			for i, doc := range all {
				assert.JSONEq(t, fmt.Sprintf(`{"n":%d}`, i), string(doc))
			}
		})
	}
}

func TestStore_ConcurrentCreateSameID(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				winners int
			)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					created, err := s.Create(ctx, KindWorker, "w-1", []byte(`{}`))
					assert.NoError(t, err)
					if created {
						mu.Lock()
						winners++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, winners)
			all, err := s.List(ctx, KindWorker)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	data := []byte(`{"a":1}`)
	_, err := s.Create(ctx, KindKmsKey, "k", data)
	require.NoError(t, err)
	data[2] = 'b'

	got, err := s.Get(ctx, KindKmsKey, "k")
	require.NoError(t, err)
	got[2] = 'c'

	again, err := s.Get(ctx, KindKmsKey, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again))
}

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(&config.RedisConfig{Addr: mr.Addr(), KeyPrefix: "kuflow"})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Create(context.Background(), KindWorker, "w-1", []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, mr.Exists("kuflow:worker:w-1"))
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(&config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

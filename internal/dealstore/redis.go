package dealstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mgirard/rentadesk/internal/rentab"
)

// RedisStore mirrors every snapshot to Redis under <KeyPrefix><dealID>.
// Like the other persistent backends it delegates listeners and the change
// feed to an embedded MemoryStore, so watch semantics are identical across
// backends; only the snapshot records are shared between processes.
type RedisStore struct {
	inner  *MemoryStore
	client *redis.Client
	ctx    context.Context

	mu             sync.Mutex
	lastPersistErr string
}

func NewRedisStore(addr string, cfg Config) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	s := &RedisStore{
		inner:  NewMemoryStore(cfg),
		client: rdb,
		ctx:    context.Background(),
	}
	if err := s.loadAll(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	return s, nil
}

func (r *RedisStore) loadAll() error {
	prefix := r.inner.cfg.KeyPrefix
	iter := r.client.Scan(r.ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(r.ctx) {
		key := iter.Val()
		blob, err := r.client.Get(r.ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return err
		}
		var snap rentab.Snapshot
		if err := json.Unmarshal([]byte(blob), &snap); err != nil {
			return fmt.Errorf("decode snapshot %q: %w", key, err)
		}
		dealID := strings.TrimPrefix(key, prefix)
		r.inner.snapshots[dealID] = &snap
	}
	return iter.Err()
}

func (r *RedisStore) persistSnapshot(dealID string, snap *rentab.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return r.recordPersist(err)
	}
	err = r.client.Set(r.ctx, r.inner.Key(dealID), string(blob), 0).Err()
	return r.recordPersist(err)
}

func (r *RedisStore) persistDelete(dealID string) error {
	err := r.client.Del(r.ctx, r.inner.Key(dealID)).Err()
	return r.recordPersist(err)
}

func (r *RedisStore) recordPersist(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.lastPersistErr = err.Error()
		return err
	}
	r.lastPersistErr = ""
	return nil
}

func (r *RedisStore) Read(dealID string) (*rentab.Snapshot, error) {
	return r.inner.Read(dealID)
}

func (r *RedisStore) Write(dealID string, snap rentab.Snapshot) (*rentab.Snapshot, error) {
	out, err := r.inner.Write(dealID, snap)
	if err != nil {
		return nil, err
	}
	if perr := r.persistSnapshot(dealID, out); perr != nil {
		return nil, NewPersistError(perr)
	}
	return out, nil
}

func (r *RedisStore) Patch(dealID string, patch Patch) (*rentab.Snapshot, error) {
	out, err := r.inner.Patch(dealID, patch)
	if err != nil || out == nil {
		return out, err
	}
	if perr := r.persistSnapshot(dealID, out); perr != nil {
		return nil, NewPersistError(perr)
	}
	return out, nil
}

func (r *RedisStore) Clear(dealID string) error {
	if err := r.inner.Clear(dealID); err != nil {
		return err
	}
	if perr := r.persistDelete(dealID); perr != nil {
		return NewPersistError(perr)
	}
	return nil
}

func (r *RedisStore) Subscribe(dealID string, fn Listener) (func(), error) {
	return r.inner.Subscribe(dealID, fn)
}

func (r *RedisStore) WatchSince(afterID int64, dealID string, wait time.Duration) ([]ChangeEvent, int64) {
	return r.inner.WatchSince(afterID, dealID, wait)
}

func (r *RedisStore) Health() map[string]any {
	out := r.inner.Health()
	out["backend"] = "redis"
	r.mu.Lock()
	persistErr := r.lastPersistErr
	r.mu.Unlock()
	if err := r.client.Ping(r.ctx).Err(); err != nil && persistErr == "" {
		persistErr = err.Error()
	}
	if persistErr != "" {
		out["status"] = "degraded"
		out["persist_error"] = persistErr
	}
	return out
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*RedisStore)(nil)
)

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSeenTTL is how long a saved search remembers listing ids after its last run.
const DefaultSeenTTL = 30 * 24 * time.Hour

// SeenStore remembers which listing ids a saved search has already reported.
type SeenStore interface {
	// MarkSeen records ids for the search and returns those not seen before, in input order.
	MarkSeen(ctx context.Context, search string, ids []string) ([]string, error)
}

// MemorySeenStore keeps seen ids in process memory.
type MemorySeenStore struct {
	mu   sync.Mutex
	seen map[string]map[string]struct{}
}

// NewMemorySeenStore returns an empty in-memory store.
func NewMemorySeenStore() *MemorySeenStore {
	return &MemorySeenStore{seen: make(map[string]map[string]struct{})}
}

func (s *MemorySeenStore) MarkSeen(_ context.Context, search string, ids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.seen[search]
	if !ok {
		set = make(map[string]struct{})
		s.seen[search] = set
	}

	fresh := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := set[id]; dup {
			continue
		}
		set[id] = struct{}{}
		fresh = append(fresh, id)
	}
	return fresh, nil
}

// RedisSeenStore keeps one Redis set per saved search.
type RedisSeenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSeenStore returns a store whose sets expire ttl after the last write.
func NewRedisSeenStore(rdb *redis.Client, ttl time.Duration) *RedisSeenStore {
	if ttl <= 0 {
		ttl = DefaultSeenTTL
	}
	return &RedisSeenStore{rdb: rdb, ttl: ttl}
}

func seenKey(search string) string {
	return "career_finder:seen:" + search
}

// MarkSeen adds every id with SADD; an id is new when SADD reports it added.
func (s *RedisSeenStore) MarkSeen(ctx context.Context, search string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	key := seenKey(search)
	cmds := make([]*redis.IntCmd, len(ids))
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.SAdd(ctx, key, id)
		}
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis mark seen %s: %w", key, err)
	}

	fresh := make([]string, 0, len(ids))
	for i, cmd := range cmds {
		if cmd.Val() == 1 {
			fresh = append(fresh, ids[i])
		}
	}
	return fresh, nil
}

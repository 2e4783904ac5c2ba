package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-finder/internal/schemas"
	"github.com/jonathan/career-finder/internal/types"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 24 * time.Hour

const redisKeyPrefix = "career_finder:session:"

// RedisStore keeps each session as one JSON value with a sliding TTL, so
// several server instances can share sessions.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a store on rdb. A non-positive ttl uses DefaultSessionTTL.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

// Create stores an empty session.
func (s *RedisStore) Create(ctx context.Context, id uuid.UUID) error {
	return s.put(ctx, &Session{ID: id, Listings: []types.JobListing{}, UpdatedAt: time.Now().UTC()})
}

// Get loads a session and refreshes its TTL.
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	raw, err := s.rdb.GetEx(ctx, redisKey(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", redisKey(id), err)
	}

	if err := schemas.Validate(schemas.Session, raw); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if sess.Listings == nil {
		sess.Listings = []types.JobListing{}
	}
	return &sess, nil
}

// SaveListings replaces the session's listing set. Only existing sessions are updated.
func (s *RedisStore) SaveListings(ctx context.Context, id uuid.UUID, listings []types.JobListing) error {
	exists, err := s.rdb.Exists(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis EXISTS %s: %w", redisKey(id), err)
	}
	if exists == 0 {
		return ErrSessionNotFound
	}
	return s.put(ctx, &Session{ID: id, Listings: listings, UpdatedAt: time.Now().UTC()})
}

func (s *RedisStore) put(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey(sess.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", redisKey(sess.ID), err)
	}
	return nil
}

package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-finder/internal/types"
)

// Session is the listing set a caller last searched for.
type Session struct {
	ID        uuid.UUID          `json:"id"`
	Listings  []types.JobListing `json:"listings"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Store keeps sessions between requests. Get returns ErrSessionNotFound for
// unknown or expired ids.
type Store interface {
	Create(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	SaveListings(ctx context.Context, id uuid.UUID, listings []types.JobListing) error
}

// DefaultCleanupInterval is how often MemoryStore sweeps expired sessions.
const DefaultCleanupInterval = 5 * time.Minute

type memoryEntry struct {
	session    Session
	lastAccess time.Time
}

// MemoryStore is an in-process Store. Sessions expire ttl after their last
// access, like RedisStore keys.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*memoryEntry
	ttl      time.Duration
	now      func() time.Time

	cleanupStop chan struct{}
	stopOnce    sync.Once
}

// NewMemoryStore creates an empty in-memory store. A non-positive ttl uses DefaultSessionTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// StartCleanup sweeps expired sessions every interval until Stop is called.
func (s *MemoryStore) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleanupStop != nil {
		return
	}
	s.cleanupStop = make(chan struct{})
	go s.cleanup(interval, s.cleanupStop)
}

func (s *MemoryStore) cleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.removeExpired(); n > 0 {
				log.Printf("[session] Removed %d expired session(s)", n)
			}
		case <-stop:
			return
		}
	}
}

// removeExpired deletes every expired session and returns how many were removed.
func (s *MemoryStore) removeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Stop ends the cleanup loop. Safe to call more than once.
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cleanupStop != nil {
			close(s.cleanupStop)
		}
	})
}

// Len returns the number of stored sessions, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(entry *memoryEntry, now time.Time) bool {
	return now.Sub(entry.lastAccess) >= s.ttl
}

// live returns the entry for id, dropping it when expired. Callers hold mu.
func (s *MemoryStore) live(id uuid.UUID, now time.Time) (*memoryEntry, bool) {
	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(entry, now) {
		delete(s.sessions, id)
		return nil, false
	}
	return entry, true
}

// Create registers an empty session.
func (s *MemoryStore) Create(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sessions[id] = &memoryEntry{
		session:    Session{ID: id, Listings: []types.JobListing{}, UpdatedAt: now.UTC()},
		lastAccess: now,
	}
	return nil
}

// Get returns a copy of the session and refreshes its expiry.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	entry, ok := s.live(id, now)
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastAccess = now
	return &Session{
		ID:        entry.session.ID,
		Listings:  append([]types.JobListing{}, entry.session.Listings...),
		UpdatedAt: entry.session.UpdatedAt,
	}, nil
}

// SaveListings replaces the session's listing set.
func (s *MemoryStore) SaveListings(_ context.Context, id uuid.UUID, listings []types.JobListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	entry, ok := s.live(id, now)
	if !ok {
		return ErrSessionNotFound
	}
	entry.session.Listings = append([]types.JobListing{}, listings...)
	entry.session.UpdatedAt = now.UTC()
	entry.lastAccess = now
	return nil
}

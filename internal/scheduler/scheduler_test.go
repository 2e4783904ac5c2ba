package scheduler

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-finder/internal/jobsource"
	"github.com/jonathan/career-finder/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	mu       sync.Mutex
	listings map[string][]types.JobListing // by location
	errs     map[string]error
	calls    int
}

func (f *fakeSearcher) Search(_ context.Context, _ []string, location string) ([]types.JobListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[location]; err != nil {
		return nil, err
	}
	return append([]types.JobListing(nil), f.listings[location]...), nil
}

func (f *fakeSearcher) set(location string, ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var listings []types.JobListing
	for _, id := range ids {
		listings = append(listings, types.JobListing{ID: id, Title: "Engineer " + id, Company: "Acme", Location: location})
	}
	f.listings[location] = listings
}

type notification struct {
	search string
	ids    []string
}

type recorder struct {
	mu    sync.Mutex
	calls []notification
	ch    chan notification
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan notification, 16)}
}

func (r *recorder) notify(search types.SavedSearch, listings []types.JobListing) {
	n := notification{search: search.Name}
	for _, l := range listings {
		n.ids = append(n.ids, l.ID)
	}
	r.mu.Lock()
	r.calls = append(r.calls, n)
	r.mu.Unlock()
	r.ch <- n
}

var savedSearches = []types.SavedSearch{
	{Name: "go-de", Keywords: []string{"golang"}, Location: "Germany"},
	{Name: "py-uk", Keywords: []string{"python"}, Location: "UK"},
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{listings: map[string][]types.JobListing{}, errs: map[string]error{}}
}

func TestNew_Validation(t *testing.T) {
	searcher := newFakeSearcher()

	_, err := New("whenever", savedSearches, searcher, nil, nil)
	assert.ErrorContains(t, err, "invalid schedule")

	_, err = New("@every 1h", nil, searcher, nil, nil)
	assert.ErrorContains(t, err, "no saved searches")

	_, err = New("@every 1h", []types.SavedSearch{{Name: "bad", Keywords: []string{"go"}, Location: "Mars"}}, searcher, nil, nil)
	var verr *types.ValidationError
	assert.ErrorAs(t, err, &verr)

	s, err := New("0 8 * * 1-5", savedSearches, searcher, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, s.seen, "defaults to memory store")
}

func TestRunOnce_ReportsOnlyNewListings(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.set("Germany", "li-1", "li-2")
	searcher.set("UK", "in-1")
	rec := newRecorder()

	s, err := New("@every 1h", savedSearches, searcher, NewMemorySeenStore(), rec.notify)
	require.NoError(t, err)
	ctx := context.Background()

	results := s.RunOnce(ctx)
	require.Len(t, results, 2)
	assert.Equal(t, RunResult{Search: "go-de", Found: 2, New: 2}, results[0])
	assert.Equal(t, RunResult{Search: "py-uk", Found: 1, New: 1}, results[1])
	require.Len(t, rec.calls, 2)
	assert.Equal(t, []string{"li-1", "li-2"}, rec.calls[0].ids)

	// Nothing new on the second cycle
	results = s.RunOnce(ctx)
	assert.Equal(t, 0, results[0].New)
	assert.Equal(t, 0, results[1].New)
	assert.Len(t, rec.calls, 2, "no notification without new listings")

	// One new listing appears
	searcher.set("Germany", "li-3", "li-1")
	results = s.RunOnce(ctx)
	assert.Equal(t, 2, results[0].Found)
	assert.Equal(t, 1, results[0].New)
	require.Len(t, rec.calls, 3)
	assert.Equal(t, notification{search: "go-de", ids: []string{"li-3"}}, rec.calls[2])
}

func TestRunOnce_SeenIsPerSearch(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.set("Germany", "shared")
	searcher.set("UK", "shared")
	rec := newRecorder()

	s, err := New("@every 1h", savedSearches, searcher, nil, rec.notify)
	require.NoError(t, err)

	results := s.RunOnce(context.Background())
	assert.Equal(t, 1, results[0].New)
	assert.Equal(t, 1, results[1].New)
}

func TestRunOnce_FailureDoesNotStopCycle(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.errs["Germany"] = &jobsource.SourceUnavailableError{Message: "job search failed"}
	searcher.set("UK", "in-1")
	rec := newRecorder()

	s, err := New("@every 1h", savedSearches, searcher, nil, rec.notify)
	require.NoError(t, err)

	results := s.RunOnce(context.Background())
	require.Len(t, results, 2)
	var sourceErr *jobsource.SourceUnavailableError
	assert.ErrorAs(t, results[0].Err, &sourceErr)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 1, results[1].New)
}

type failingSeen struct{}

func (failingSeen) MarkSeen(context.Context, string, []string) ([]string, error) {
	return nil, errors.New("redis down")
}

func TestRunOnce_SeenStoreFailure(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.set("Germany", "li-1")
	rec := newRecorder()

	s, err := New("@every 1h", savedSearches[:1], searcher, failingSeen{}, rec.notify)
	require.NoError(t, err)

	results := s.RunOnce(context.Background())
	assert.EqualError(t, results[0].Err, "redis down")
	assert.Empty(t, rec.calls, "nothing is reported when dedup state is unknown")
}

func TestRunOnce_CancelledContext(t *testing.T) {
	searcher := newFakeSearcher()
	s, err := New("@every 1h", savedSearches, searcher, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, s.RunOnce(ctx))
	assert.Equal(t, 0, searcher.calls)
}

func TestTick_SkipsWhileCycleRunning(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.set("Germany", "li-1")

	s, err := New("@every 1h", savedSearches[:1], searcher, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	s.cycleMu.Lock()
	assert.False(t, s.tick(ctx), "tick during a running cycle is skipped")
	s.cycleMu.Unlock()
	assert.Equal(t, 0, searcher.calls)

	assert.True(t, s.tick(ctx))
	assert.Equal(t, 1, searcher.calls)
}

func TestStart_RunsImmediately(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.set("Germany", "li-1")
	rec := newRecorder()

	s, err := New("@every 1h", savedSearches[:1], searcher, nil, rec.notify)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	select {
	case n := <-rec.ch:
		assert.Equal(t, "go-de", n.search)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate cycle")
	}

	s.Stop()
}

func TestMemorySeenStore(t *testing.T) {
	store := NewMemorySeenStore()
	ctx := context.Background()

	fresh, err := store.MarkSeen(ctx, "a", []string{"1", "2", "2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, fresh)

	fresh, err = store.MarkSeen(ctx, "a", []string{"2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, fresh)

	fresh, err = store.MarkSeen(ctx, "b", []string{"2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, fresh)

	fresh, err = store.MarkSeen(ctx, "b", nil)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

// Integration test: requires a Redis instance at TEST_REDIS_URL.
func TestRedisSeenStore(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set, skipping Redis integration test")
	}

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	search := "test-" + uuid.NewString()
	defer rdb.Del(ctx, seenKey(search))

	store := NewRedisSeenStore(rdb, time.Minute)

	fresh, err := store.MarkSeen(ctx, search, []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, fresh)

	fresh, err = store.MarkSeen(ctx, search, []string{"2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, fresh)

	ttl, err := rdb.TTL(ctx, seenKey(search)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

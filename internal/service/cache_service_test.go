package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/survey-api/pkg/errors"
)

type mapCacheRepo struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
}

func newMapCacheRepo() *mapCacheRepo {
	return &mapCacheRepo{data: map[string][]byte{}}
}

func (r *mapCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return r.getErr
	}
	raw, ok := r.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *mapCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = raw
	return nil
}

func (r *mapCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range r.data {
		if strings.HasPrefix(key, prefix) {
			delete(r.data, key)
		}
	}
	return nil
}

func (r *mapCacheRepo) put(key string, value interface{}) {
	_ = r.Set(context.Background(), key, value, time.Minute)
}

func (r *mapCacheRepo) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[key]
	return ok
}

func TestCacheServiceHitMissAndInvalidate(t *testing.T) {
	repo := newMapCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, 0, nil, true)

	var out map[string]int
	hit, err := cache.Get(context.Background(), userCacheKey("alice"), &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(context.Background(), userCacheKey("alice"), map[string]int{"total": 2}, 0))
	hit, err = cache.Get(context.Background(), userCacheKey("alice"), &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, out["total"])

	repo.put("other:key", 1)
	require.NoError(t, cache.Invalidate(context.Background(), cachePatternSurveys))
	assert.False(t, repo.has(userCacheKey("alice")))
	assert.True(t, repo.has("other:key"))

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
}

func TestCacheServiceDisabledAndFailing(t *testing.T) {
	var nilCache *CacheService
	hit, err := nilCache.Get(context.Background(), "k", nil)
	assert.False(t, hit)
	assert.NoError(t, err)
	assert.NoError(t, nilCache.Invalidate(context.Background(), cachePatternSurveys))

	disabled := NewCacheService(newMapCacheRepo(), nil, time.Minute, nil, false)
	assert.False(t, disabled.Enabled())

	repo := newMapCacheRepo()
	repo.getErr = errors.New("redis down")
	failing := NewCacheService(repo, nil, time.Minute, nil, true)
	var out int
	hit, err = failing.Get(context.Background(), "k", &out)
	assert.False(t, hit)
	assert.Error(t, err)
}

func TestRememberSharesConcurrentLoads(t *testing.T) {
	repo := newMapCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	var (
		mu    sync.Mutex
		calls int
	)
	release := make(chan struct{})
	load := func(ctx context.Context) (map[string]int, bool, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return map[string]int{"total": 3}, true, nil
	}

	var wg sync.WaitGroup
	results := make([]map[string]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, _, err := remember(context.Background(), cache, cacheKeyAllSurveys, 0, load)
			assert.NoError(t, err)
			results[i] = value
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, value := range results {
		assert.Equal(t, 3, value["total"])
	}
	assert.True(t, repo.has(cacheKeyAllSurveys))

	value, hit, err := remember(context.Background(), cache, cacheKeyAllSurveys, 0, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, value["total"])
	assert.Equal(t, 1, calls)
}

func TestRememberSkipsUncacheableResults(t *testing.T) {
	repo := newMapCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	_, hit, err := remember(context.Background(), cache, userCacheKey("alice"), 0, func(ctx context.Context) (int, bool, error) {
		return 1, false, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, repo.has(userCacheKey("alice")))

	var nilCache *CacheService
	value, hit, err := remember(context.Background(), nilCache, "k", 0, func(ctx context.Context) (int, bool, error) {
		return 7, true, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, value)
}

func TestRememberDropsLoadOvertakenByInvalidate(t *testing.T) {
	repo := newMapCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int, 1)
	go func() {
		value, _, err := remember(context.Background(), cache, cacheKeyAllSurveys, 0, func(ctx context.Context) (int, bool, error) {
			close(entered)
			<-release
			return 1, true, nil
		})
		assert.NoError(t, err)
		done <- value
	}()

	<-entered
	require.NoError(t, cache.Invalidate(context.Background(), cachePatternSurveys))

	value, hit, err := remember(context.Background(), cache, cacheKeyAllSurveys, 0, func(ctx context.Context) (int, bool, error) {
		return 2, true, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, value)

	close(release)
	assert.Equal(t, 1, <-done)

	var cached int
	hit, err = cache.Get(context.Background(), cacheKeyAllSurveys, &cached)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, cached)
}

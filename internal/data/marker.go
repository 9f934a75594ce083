package data

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
)

// memoryMarkerRepo keeps markers in a bounded LRU.
// The oldest markers are evicted once the cache is full.
type memoryMarkerRepo struct {
	cache *lru.Cache[string, struct{}]
}

// NewMemoryMarkerRepo creates an in-memory marker repository holding at most size keys
func NewMemoryMarkerRepo(size int) (repo.MarkerRepo, error) {
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create marker cache: %w", err)
	}
	return &memoryMarkerRepo{cache: cache}, nil
}

// MarkOnce implements MarkerRepo
func (r *memoryMarkerRepo) MarkOnce(ctx context.Context, key string) (bool, error) {
	present, _ := r.cache.ContainsOrAdd(key, struct{}{})
	return !present, nil
}

// Cleanup implements MarkerRepo. Eviction is size based, so there is nothing to do.
func (r *memoryMarkerRepo) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// Close implements MarkerRepo
func (r *memoryMarkerRepo) Close() error {
	r.cache.Purge()
	return nil
}

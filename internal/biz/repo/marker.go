package repo

import (
	"context"
	"time"
)

// MarkerRepo remembers which messages already got an analyze prompt
type MarkerRepo interface {
	// MarkOnce records key and reports whether this call was the first to do so.
	// Concurrent callers with the same key see exactly one true.
	MarkOnce(ctx context.Context, key string) (bool, error)

	// Cleanup forgets markers recorded before the given time
	Cleanup(ctx context.Context, before time.Time) (int64, error)

	// Close releases underlying resources
	Close() error
}

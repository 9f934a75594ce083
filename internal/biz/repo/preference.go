package repo

import "context"

// PreferenceRepo stores per-user opt-in flags.
// Users that were never recorded are opted out.
type PreferenceRepo interface {
	IsOptedIn(ctx context.Context, userID string) (bool, error)
	SetOptIn(ctx context.Context, userID string, optedIn bool) error
}

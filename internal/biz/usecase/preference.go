package usecase

import (
	"context"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
)

// PreferenceUsecase handles opt-in management
type PreferenceUsecase struct {
	prefRepo repo.PreferenceRepo
}

// NewPreferenceUsecase creates a new preference usecase
func NewPreferenceUsecase(prefRepo repo.PreferenceRepo) *PreferenceUsecase {
	return &PreferenceUsecase{prefRepo: prefRepo}
}

// OptIn enables automatic analysis for a user
func (uc *PreferenceUsecase) OptIn(ctx context.Context, userID string) error {
	return uc.prefRepo.SetOptIn(ctx, userID, true)
}

// OptOut disables automatic analysis for a user
func (uc *PreferenceUsecase) OptOut(ctx context.Context, userID string) error {
	return uc.prefRepo.SetOptIn(ctx, userID, false)
}

// IsOptedIn checks whether a user enabled automatic analysis
func (uc *PreferenceUsecase) IsOptedIn(ctx context.Context, userID string) (bool, error) {
	return uc.prefRepo.IsOptedIn(ctx, userID)
}

package repo

import (
	"context"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
)

// ToneRepo is the language model interface
type ToneRepo interface {
	// DetectTone classifies the tone and urgency of a message.
	// Any failure is returned as *domain.AnalysisError.
	DetectTone(ctx context.Context, text string) (*domain.ToneDetectionResult, error)

	// TranslateToGreek translates text while keeping its tone, emotion and urgency
	TranslateToGreek(ctx context.Context, text string) (string, error)

	// Summarize condenses a thread into takeaways, action items and decisions
	Summarize(ctx context.Context, messages []domain.Message) (string, error)
}

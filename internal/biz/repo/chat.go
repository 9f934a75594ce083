package repo

import (
	"context"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
)

// ChatRepo is the chat platform interface.
// Failed calls return *domain.PlatformError.
type ChatRepo interface {
	// PostEphemeral sends a plain text message visible only to user
	PostEphemeral(ctx context.Context, channel, user, text string) error

	// PostToneResult renders a tone result with reply buttons, visible only to user
	PostToneResult(ctx context.Context, channel, user string, result *domain.ToneDetectionResult) error

	// PostMessage posts a public message to the channel
	PostMessage(ctx context.Context, channel, text string) error

	// PostAnalyzePrompt posts the "Analyze this message" button in the message's thread
	PostAnalyzePrompt(ctx context.Context, channel, messageTS string) error

	// GetChannelHistory returns up to limit recent messages, in platform order
	GetChannelHistory(ctx context.Context, channel string, limit int) ([]domain.Message, error)

	// GetMessage fetches a single message by ts
	GetMessage(ctx context.Context, channel, ts string) (*domain.Message, error)

	// GetThreadReplies returns every message of a thread, parent included
	GetThreadReplies(ctx context.Context, channel, threadTS string) ([]domain.Message, error)
}

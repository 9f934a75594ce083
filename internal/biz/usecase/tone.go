package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
)

// HistoryScanLimit is how many recent channel messages are scanned for the latest message
const HistoryScanLimit = 20

var (
	// ErrNoRecentMessage means the channel has no recent message from another human
	ErrNoRecentMessage = errors.New("no recent message from another user")

	// ErrEmptyThread means the thread has no messages with both an author and text
	ErrEmptyThread = errors.New("thread has no messages to summarize")
)

// ToneUsecase handles tone analysis, translation and thread summaries
type ToneUsecase struct {
	toneRepo repo.ToneRepo
	chatRepo repo.ChatRepo
}

// NewToneUsecase creates a new tone usecase
func NewToneUsecase(toneRepo repo.ToneRepo, chatRepo repo.ChatRepo) *ToneUsecase {
	return &ToneUsecase{
		toneRepo: toneRepo,
		chatRepo: chatRepo,
	}
}

// Analyze detects the tone of text
func (uc *ToneUsecase) Analyze(ctx context.Context, text string) (*domain.ToneDetectionResult, error) {
	return uc.toneRepo.DetectTone(ctx, text)
}

// AnalyzeMessage fetches a message by ts and detects its tone
func (uc *ToneUsecase) AnalyzeMessage(ctx context.Context, channel, ts string) (*domain.ToneDetectionResult, error) {
	msg, err := uc.chatRepo.GetMessage(ctx, channel, ts)
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return uc.toneRepo.DetectTone(ctx, msg.Text)
}

// AnalyzeLatest detects the tone of the newest channel message not written by requester
func (uc *ToneUsecase) AnalyzeLatest(ctx context.Context, channel, requester string) (*domain.ToneDetectionResult, error) {
	msg, err := uc.LatestMessageFromOthers(ctx, channel, requester)
	if err != nil {
		return nil, err
	}
	return uc.toneRepo.DetectTone(ctx, msg.Text)
}

// LatestMessageFromOthers scans the last HistoryScanLimit messages, newest first, and returns
// the first plain human message whose author is not requester.
func (uc *ToneUsecase) LatestMessageFromOthers(ctx context.Context, channel, requester string) (*domain.Message, error) {
	msgs, err := uc.chatRepo.GetChannelHistory(ctx, channel, HistoryScanLimit)
	if err != nil {
		return nil, fmt.Errorf("get channel history: %w", err)
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Time().After(msgs[j].Time())
	})

	for i := range msgs {
		m := &msgs[i]
		if m.IsFromHuman() && m.User != requester {
			return m, nil
		}
	}
	return nil, ErrNoRecentMessage
}

// Translate translates text to Greek keeping its tone
func (uc *ToneUsecase) Translate(ctx context.Context, text string) (string, error) {
	return uc.toneRepo.TranslateToGreek(ctx, text)
}

// SummarizeThread summarizes the thread a permalink points to.
// Returns domain.ErrPatternMismatch when text holds no permalink.
func (uc *ToneUsecase) SummarizeThread(ctx context.Context, text string) (string, error) {
	link, err := domain.ParsePermalink(text)
	if err != nil {
		return "", err
	}

	replies, err := uc.chatRepo.GetThreadReplies(ctx, link.Channel, link.TS)
	if err != nil {
		return "", fmt.Errorf("get thread replies: %w", err)
	}

	var messages []domain.Message
	for _, m := range replies {
		if m.User != "" && m.Text != "" {
			messages = append(messages, m)
		}
	}
	if len(messages) == 0 {
		return "", ErrEmptyThread
	}

	return uc.toneRepo.Summarize(ctx, messages)
}

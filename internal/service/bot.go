package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/biz"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/usecase"
	"github.com/DevRickLin/slack-tone-bot/internal/data"
	"github.com/DevRickLin/slack-tone-bot/internal/metrics"
)

// ErrUnknownAction is returned for interactions with an action id the bot does not handle
var ErrUnknownAction = errors.New("unknown action")

// User-facing texts
const (
	textOptedIn          = "You're opted in. I'll offer tone analysis on your messages."
	textOptedOut         = "You're opted out. I won't analyze your messages anymore."
	textInvalidThread    = "Please provide a valid thread link."
	textEmptyThread      = "That thread has no messages to summarize."
	textNoRecentMessage  = "I couldn't find a recent message from someone else to analyze."
	textSummaryFailed    = "Sorry, I couldn't summarize that thread."
	textTranslateFailed  = "Sorry, I couldn't translate that message."
	textFetchFailed      = "Sorry, I couldn't fetch that message."
	textAnalysisFailedFn = "Sorry, I couldn't analyze that message (%s)."
)

// SlashCommand is a parsed slash-command invocation
type SlashCommand struct {
	Command   string
	Text      string
	ChannelID string
	UserID    string
}

// Action is a single clicked button from an interaction payload
type Action struct {
	ActionID  string
	Value     string
	UserID    string
	ChannelID string
}

// BotService orchestrates every inbound webhook.
// Platform failures are logged and swallowed so one failed post never aborts a handler.
type BotService struct {
	toneUC     *usecase.ToneUsecase
	prefUC     *usecase.PreferenceUsecase
	chatRepo   repo.ChatRepo
	markerRepo repo.MarkerRepo
	reminders  *ReminderScheduler

	reminderDelay time.Duration
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewBotService creates a new bot service
func NewBotService(
	ucs *biz.Usecases,
	chatRepo repo.ChatRepo,
	markerRepo repo.MarkerRepo,
	reminders *ReminderScheduler,
	reminderDelay time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BotService {
	return &BotService{
		toneUC:        ucs.Tone,
		prefUC:        ucs.Preference,
		chatRepo:      chatRepo,
		markerRepo:    markerRepo,
		reminders:     reminders,
		reminderDelay: reminderDelay,
		metrics:       m,
		logger:        logger.Named("bot"),
	}
}

// HandleDetectTone analyzes the command text, or the latest message from someone else when it is empty
func (s *BotService) HandleDetectTone(ctx context.Context, cmd SlashCommand) {
	var (
		result *domain.ToneDetectionResult
		err    error
	)
	start := time.Now()
	if strings.TrimSpace(cmd.Text) == "" {
		result, err = s.toneUC.AnalyzeLatest(ctx, cmd.ChannelID, cmd.UserID)
	} else {
		result, err = s.toneUC.Analyze(ctx, cmd.Text)
	}

	if errors.Is(err, usecase.ErrNoRecentMessage) {
		s.notify(ctx, "no_recent_message", cmd.ChannelID, cmd.UserID, textNoRecentMessage)
		return
	}
	var pe *domain.PlatformError
	if errors.As(err, &pe) {
		s.platformFailure("fetch_history", err)
		s.notify(ctx, "post_error", cmd.ChannelID, cmd.UserID, textFetchFailed)
		return
	}
	s.recordAnalysis(err, start)
	if err != nil {
		s.reportAnalysisError(ctx, cmd.ChannelID, cmd.UserID, err)
		return
	}

	s.postResult(ctx, cmd.ChannelID, cmd.UserID, result)
}

// HandleMessageEvent processes a channel message event
func (s *BotService) HandleMessageEvent(ctx context.Context, msg domain.Message) {
	if !msg.IsFromHuman() {
		return
	}

	if msg.IsThreadReply() {
		if s.reminders.CancelOnReply(msg.ThreadTS, msg.User) {
			s.logger.Info("thread reply cancelled reminder", zap.String("thread_ts", msg.ThreadTS), zap.String("user", msg.User))
		}
		return
	}

	optedIn, err := s.prefUC.IsOptedIn(ctx, msg.User)
	if err != nil {
		s.logger.Error("failed to read preference", zap.String("user", msg.User), zap.Error(err))
		return
	}
	if !optedIn {
		return
	}

	first, err := s.markerRepo.MarkOnce(ctx, msg.TS)
	if err != nil {
		s.logger.Error("failed to mark message", zap.String("ts", msg.TS), zap.Error(err))
		return
	}
	if !first {
		s.logger.Debug("duplicate delivery ignored", zap.String("ts", msg.TS))
		return
	}

	if err := s.chatRepo.PostAnalyzePrompt(ctx, msg.Channel, msg.TS); err != nil {
		s.platformFailure("post_analyze_prompt", err)
	}

	start := time.Now()
	result, err := s.toneUC.Analyze(ctx, msg.Text)
	s.recordAnalysis(err, start)
	if err != nil {
		s.logger.Error("tone detection failed", zap.String("ts", msg.TS), zap.Error(err))
		return
	}

	if result.IsUrgent() {
		s.reminders.Schedule(msg.Channel, msg.TS, msg.User, s.reminderDelay)
	}
}

// HandleAction dispatches one interactive button click.
// Returns ErrUnknownAction for unrecognized action ids.
func (s *BotService) HandleAction(ctx context.Context, act Action) error {
	optedIn, err := s.prefUC.IsOptedIn(ctx, act.UserID)
	if err != nil {
		s.logger.Error("failed to read preference", zap.String("user", act.UserID), zap.Error(err))
		return nil
	}
	if !optedIn {
		s.logger.Debug("action from opted-out user ignored", zap.String("user", act.UserID), zap.String("action", act.ActionID))
		return nil
	}

	switch {
	case act.ActionID == data.ActionAnalyzeMessage:
		start := time.Now()
		result, err := s.toneUC.AnalyzeMessage(ctx, act.ChannelID, act.Value)
		var pe *domain.PlatformError
		if errors.As(err, &pe) {
			s.platformFailure("fetch_message", err)
			s.notify(ctx, "post_error", act.ChannelID, act.UserID, textFetchFailed)
			return nil
		}
		s.recordAnalysis(err, start)
		if err != nil {
			s.reportAnalysisError(ctx, act.ChannelID, act.UserID, err)
			return nil
		}
		s.postResult(ctx, act.ChannelID, act.UserID, result)

	case strings.HasPrefix(act.ActionID, data.ActionQuickReplyPrefix):
		if err := s.chatRepo.PostMessage(ctx, act.ChannelID, act.Value); err != nil {
			s.platformFailure("post_quick_reply", err)
		}

	case act.ActionID == data.ActionTranslateToGreek:
		translated, err := s.toneUC.Translate(ctx, act.Value)
		if err != nil {
			s.logger.Error("translation failed", zap.Error(err))
			s.notify(ctx, "translate_failed", act.ChannelID, act.UserID, textTranslateFailed)
			return nil
		}
		s.notify(ctx, "post_translation", act.ChannelID, act.UserID, translated)

	default:
		return ErrUnknownAction
	}
	return nil
}

// IsKnownAction reports whether HandleAction dispatches the given action id
func IsKnownAction(actionID string) bool {
	return actionID == data.ActionAnalyzeMessage ||
		actionID == data.ActionTranslateToGreek ||
		strings.HasPrefix(actionID, data.ActionQuickReplyPrefix)
}

// HandleOptIn opts the requesting user in
func (s *BotService) HandleOptIn(ctx context.Context, cmd SlashCommand) {
	s.setPreference(ctx, cmd, true)
}

// HandleOptOut opts the requesting user out
func (s *BotService) HandleOptOut(ctx context.Context, cmd SlashCommand) {
	s.setPreference(ctx, cmd, false)
}

func (s *BotService) setPreference(ctx context.Context, cmd SlashCommand, optIn bool) {
	var err error
	text := textOptedIn
	if optIn {
		err = s.prefUC.OptIn(ctx, cmd.UserID)
	} else {
		err = s.prefUC.OptOut(ctx, cmd.UserID)
		text = textOptedOut
	}
	if err != nil {
		s.logger.Error("failed to save preference", zap.String("user", cmd.UserID), zap.Bool("opt_in", optIn), zap.Error(err))
		return
	}
	s.logger.Info("preference updated", zap.String("user", cmd.UserID), zap.Bool("opt_in", optIn))
	s.notify(ctx, "post_preference", cmd.ChannelID, cmd.UserID, text)
}

// HandleSummarizeThread summarizes the thread linked in the command text
func (s *BotService) HandleSummarizeThread(ctx context.Context, cmd SlashCommand) {
	summary, err := s.toneUC.SummarizeThread(ctx, cmd.Text)
	switch {
	case errors.Is(err, domain.ErrPatternMismatch):
		s.notify(ctx, "post_summary", cmd.ChannelID, cmd.UserID, textInvalidThread)
	case errors.Is(err, usecase.ErrEmptyThread):
		s.notify(ctx, "post_summary", cmd.ChannelID, cmd.UserID, textEmptyThread)
	case err != nil:
		s.logger.Error("thread summary failed", zap.Error(err))
		s.notify(ctx, "post_summary", cmd.ChannelID, cmd.UserID, textSummaryFailed)
	default:
		s.notify(ctx, "post_summary", cmd.ChannelID, cmd.UserID, summary)
	}
}

func (s *BotService) postResult(ctx context.Context, channel, user string, result *domain.ToneDetectionResult) {
	if err := s.chatRepo.PostToneResult(ctx, channel, user, result); err != nil {
		s.platformFailure("post_result", err)
	}
}

func (s *BotService) reportAnalysisError(ctx context.Context, channel, user string, err error) {
	s.logger.Error("tone detection failed", zap.String("channel", channel), zap.Error(err))

	kind := "unknown"
	var ae *domain.AnalysisError
	if errors.As(err, &ae) {
		kind = strings.ReplaceAll(string(ae.Kind), "_", " ")
	}
	s.notify(ctx, "post_error", channel, user, fmt.Sprintf(textAnalysisFailedFn, kind))
}

func (s *BotService) notify(ctx context.Context, step, channel, user, text string) {
	if err := s.chatRepo.PostEphemeral(ctx, channel, user, text); err != nil {
		s.platformFailure(step, err)
	}
}

func (s *BotService) platformFailure(step string, err error) {
	s.metrics.PlatformError(step)
	s.logger.Warn("platform call failed", zap.String("step", step), zap.Error(err))
}

func (s *BotService) recordAnalysis(err error, start time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var ae *domain.AnalysisError
		if errors.As(err, &ae) {
			outcome = string(ae.Kind)
		}
	}
	s.metrics.Analysis(outcome, time.Since(start))
}

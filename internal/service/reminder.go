package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
	"github.com/DevRickLin/slack-tone-bot/internal/metrics"
)

const nudgeTimeout = 10 * time.Second

// Timer is a stoppable pending callback
type Timer interface {
	Stop() bool
}

// TimerFunc schedules f to run once after d
type TimerFunc func(d time.Duration, f func()) Timer

func realTimer(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type pendingReminder struct {
	reminder *domain.Reminder
	timer    Timer
}

// ReminderScheduler nudges authors of urgent messages that got no thread reply in time.
// At most one reminder is pending per message ts.
type ReminderScheduler struct {
	chatRepo repo.ChatRepo
	metrics  *metrics.Metrics
	logger   *zap.Logger
	after    TimerFunc

	mu      sync.Mutex
	pending map[string]*pendingReminder
}

// NewReminderScheduler creates a new reminder scheduler
func NewReminderScheduler(chatRepo repo.ChatRepo, m *metrics.Metrics, logger *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		chatRepo: chatRepo,
		metrics:  m,
		logger:   logger.Named("reminder"),
		after:    realTimer,
		pending:  make(map[string]*pendingReminder),
	}
}

// WithTimerFunc replaces the timer implementation (tests)
func (s *ReminderScheduler) WithTimerFunc(f TimerFunc) *ReminderScheduler {
	s.after = f
	return s
}

// Schedule arms a reminder for messageTS. Returns false if one is already pending.
func (s *ReminderScheduler) Schedule(channel, messageTS, user string, delay time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[messageTS]; ok {
		return false
	}

	r := domain.NewReminder(uuid.NewString(), channel, messageTS, user, delay)
	p := &pendingReminder{reminder: r}
	s.pending[messageTS] = p
	p.timer = s.after(delay, func() { s.fire(r) })

	s.metrics.Reminder("scheduled")
	s.logger.Info("reminder scheduled",
		zap.String("id", r.ID),
		zap.String("channel", channel),
		zap.String("ts", messageTS),
		zap.Duration("delay", delay),
	)
	return true
}

// Cancel cancels the pending reminder for messageTS. Returns true if this call cancelled it.
func (s *ReminderScheduler) Cancel(messageTS string) bool {
	return s.cancel(messageTS, "")
}

// CancelOnReply cancels the reminder for threadTS unless the replier is the original author
func (s *ReminderScheduler) CancelOnReply(threadTS, replier string) bool {
	return s.cancel(threadTS, replier)
}

func (s *ReminderScheduler) cancel(messageTS, replier string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[messageTS]
	if !ok {
		return false
	}
	if replier != "" && replier == p.reminder.User {
		return false
	}
	if !p.reminder.Cancel() {
		// fire won the race and removes the entry itself
		return false
	}
	delete(s.pending, messageTS)
	p.timer.Stop()

	s.metrics.Reminder("cancelled")
	s.logger.Info("reminder cancelled", zap.String("id", p.reminder.ID), zap.String("ts", messageTS))
	return true
}

// Pending reports whether a reminder is pending for messageTS
func (s *ReminderScheduler) Pending(messageTS string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[messageTS]
	return ok
}

// Stop cancels every pending reminder
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ts, p := range s.pending {
		if p.reminder.Cancel() {
			p.timer.Stop()
		}
		delete(s.pending, ts)
	}
	s.logger.Info("reminder scheduler stopped")
}

func (s *ReminderScheduler) fire(r *domain.Reminder) {
	if !r.Fire() {
		return
	}

	s.mu.Lock()
	if p, ok := s.pending[r.MessageTS]; ok && p.reminder == r {
		delete(s.pending, r.MessageTS)
	}
	s.mu.Unlock()

	s.metrics.Reminder("fired")

	ctx, cancel := context.WithTimeout(context.Background(), nudgeTimeout)
	defer cancel()

	if err := s.chatRepo.PostEphemeral(ctx, r.Channel, r.User, NudgeText(r.User, r.Delay)); err != nil {
		s.metrics.PlatformError("reminder")
		s.logger.Warn("failed to send reminder", zap.String("id", r.ID), zap.Error(err))
		return
	}
	s.logger.Info("reminder sent", zap.String("id", r.ID), zap.String("ts", r.MessageTS))
}

// NudgeText is the reminder sent to the author of an unanswered urgent message
func NudgeText(user string, delay time.Duration) string {
	return fmt.Sprintf("<@%s>, this urgent message has not been replied to in the last %s. Please follow up!",
		user, HumanizeDelay(delay))
}

// HumanizeDelay renders a delay such as "10 seconds" or "2 minutes"
func HumanizeDelay(d time.Duration) string {
	now := time.Now()
	return strings.TrimSpace(humanize.RelTime(now, now.Add(d), "", ""))
}

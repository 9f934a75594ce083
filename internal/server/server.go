package server

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/api"
	"github.com/DevRickLin/slack-tone-bot/internal/data"
	"github.com/DevRickLin/slack-tone-bot/internal/service"
)

// BotServer owns the long-running parts of the bot
type BotServer struct {
	httpServer *api.Server
	reminders  *service.ReminderScheduler
	janitor    *service.MarkerJanitor
	repos      *data.Repositories
	logger     *zap.Logger

	mu      sync.Mutex
	stopped bool
}

// NewBotServer creates a new bot server
func NewBotServer(
	httpServer *api.Server,
	reminders *service.ReminderScheduler,
	janitor *service.MarkerJanitor,
	repos *data.Repositories,
	logger *zap.Logger,
) *BotServer {
	return &BotServer{
		httpServer: httpServer,
		reminders:  reminders,
		janitor:    janitor,
		repos:      repos,
		logger:     logger.Named("server"),
	}
}

// Start starts background jobs and serves HTTP until Stop is called
func (s *BotServer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	if s.janitor != nil {
		s.janitor.Start(ctx)
	}
	s.mu.Unlock()

	return s.httpServer.Start()
}

// Stop shuts down in dependency order: stop accepting webhooks, drain their work,
// drop pending reminders, then release storage.
func (s *BotServer) Stop(ctx context.Context) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	if err := s.httpServer.Stop(ctx); err != nil {
		s.logger.Warn("http shutdown", zap.Error(err))
	}
	if s.janitor != nil {
		s.janitor.Stop()
	}
	s.reminders.Stop()
	if s.repos != nil {
		if err := s.repos.Close(); err != nil {
			s.logger.Warn("close repositories", zap.Error(err))
		}
	}
	s.logger.Info("stopped")
}

package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/metrics"
	"github.com/DevRickLin/slack-tone-bot/internal/service"
)

// DefaultWorkTimeout bounds the background work started by one webhook
const DefaultWorkTimeout = 2 * time.Minute

// Handler turns Slack webhooks into BotService calls.
// Slack expects an answer within three seconds, so the work itself runs after the acknowledgment.
type Handler struct {
	bot     *service.BotService
	metrics *metrics.Metrics
	logger  *zap.Logger

	workTimeout  time.Duration
	syncDispatch bool
	wg           sync.WaitGroup
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithSyncDispatch runs webhook work before responding
func WithSyncDispatch() HandlerOption {
	return func(h *Handler) { h.syncDispatch = true }
}

// NewHandler creates a webhook handler
func NewHandler(bot *service.BotService, m *metrics.Metrics, logger *zap.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		bot:         bot,
		metrics:     m,
		logger:      logger.Named("api"),
		workTimeout: DefaultWorkTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Wait blocks until all background work has finished
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) dispatch(c *gin.Context, fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.workTimeout)
	if h.syncDispatch {
		defer cancel()
		h.run(ctx, fn)
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer cancel()
		h.run(ctx, fn)
	}()
}

// run calls fn and contains any panic; gin.Recovery does not cover work started off the request goroutine
func (h *Handler) run(ctx context.Context, fn func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("webhook work panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	fn(ctx)
}

func (h *Handler) slashCommand(route string, run func(context.Context, service.SlashCommand)) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.metrics.Webhook(route)

		cmd, err := ParseSlashCommand(c.Request)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Info("slash command",
			zap.String("route", route),
			zap.String("user", cmd.UserID),
			zap.String("channel", cmd.ChannelID))

		h.dispatch(c, func(ctx context.Context) { run(ctx, cmd) })
		c.Status(http.StatusOK)
	}
}

func (h *Handler) detectToneGet(c *gin.Context) {
	c.String(http.StatusOK, "hello there")
}

func (h *Handler) events(c *gin.Context) {
	h.metrics.Webhook("events")

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	env, err := ParseEvent(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if env.Challenge != "" {
		c.JSON(http.StatusOK, gin.H{"challenge": env.Challenge})
		return
	}
	if env.Message == nil {
		h.logger.Debug("event ignored", zap.String("type", env.Type))
		c.Status(http.StatusOK)
		return
	}

	msg := *env.Message
	h.dispatch(c, func(ctx context.Context) { h.bot.HandleMessageEvent(ctx, msg) })
	c.Status(http.StatusOK)
}

func (h *Handler) interactions(c *gin.Context) {
	h.metrics.Webhook("interactions")

	act, err := ParseInteraction(c.Request)
	if errors.Is(err, ErrNoAction) {
		c.JSON(http.StatusOK, gin.H{"error": "unknown action"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !service.IsKnownAction(act.ActionID) {
		h.logger.Warn("unknown action", zap.String("action", act.ActionID), zap.String("user", act.UserID))
		c.JSON(http.StatusOK, gin.H{"error": "unknown action"})
		return
	}

	h.dispatch(c, func(ctx context.Context) {
		if err := h.bot.HandleAction(ctx, act); err != nil {
			h.logger.Warn("action failed", zap.String("action", act.ActionID), zap.Error(err))
		}
	})
	c.Status(http.StatusOK)
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/conf"
)

// Server serves the Slack webhooks plus health and metrics
type Server struct {
	handler *Handler
	engine  *gin.Engine
	server  *http.Server
	port    int
	logger  *zap.Logger
}

// NewServer creates a new API server.
// gatherer may be nil, in which case /metrics is not mounted.
func NewServer(cfg *conf.Config, handler *Handler, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger = logger.Named("http")

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(AccessLog(logger))

	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	engine.GET("/detect-tone", handler.detectToneGet)

	if cfg.Slack.SigningSecret == "" {
		logger.Warn("SLACK_SIGNING_SECRET is not set, request signatures will not be verified")
	}
	slackRoutes := engine.Group("/", VerifySlackSignature(cfg.Slack.SigningSecret, logger))
	slackRoutes.POST("/detect-tone", handler.slashCommand("detect_tone", handler.bot.HandleDetectTone))
	slackRoutes.POST("/optin", handler.slashCommand("optin", handler.bot.HandleOptIn))
	slackRoutes.POST("/optout", handler.slashCommand("optout", handler.bot.HandleOptOut))
	slackRoutes.POST("/summarizethread", handler.slashCommand("summarize_thread", handler.bot.HandleSummarizeThread))
	slackRoutes.POST("/slack/events", handler.events)
	slackRoutes.POST("/slack/interactions", handler.interactions)

	return &Server{
		handler: handler,
		engine:  engine,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		port:   cfg.Server.Port,
		logger: logger,
	}
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.Int("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down and waits for in-flight webhook work
func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.handler.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("background work still running at shutdown")
	}
	return err
}

// GetPort returns the server port
func (s *Server) GetPort() int {
	return s.port
}

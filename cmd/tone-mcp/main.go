package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/usecase"
	"github.com/DevRickLin/slack-tone-bot/internal/conf"
	"github.com/DevRickLin/slack-tone-bot/internal/data"
	"github.com/DevRickLin/slack-tone-bot/internal/infra/llm"
	"github.com/DevRickLin/slack-tone-bot/internal/mcp"
)

const version = "v1.0.0"

// tone-mcp serves the tone tools over stdio. Stdout belongs to the protocol, so logs go to stderr.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := conf.Load(conf.New(), logger)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := cfg.ValidateLLM(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	client := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	toneRepo := data.NewToneRepo(client, cfg.Prompts, logger)

	var toneUC *usecase.ToneUsecase
	if cfg.Slack.BotToken != "" {
		chat := data.NewSlackRepo(data.NewSlackClient(cfg.Slack.BotToken, cfg.Slack.APIURL))
		toneUC = usecase.NewToneUsecase(toneRepo, chat)
	} else {
		logger.Info("SLACK_BOT_TOKEN not set, summarize_thread disabled")
	}

	srv := mcp.NewServer(toneRepo, toneUC, version, logger)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("mcp server", zap.Error(err))
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/api"
	"github.com/DevRickLin/slack-tone-bot/internal/biz"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/usecase"
	"github.com/DevRickLin/slack-tone-bot/internal/conf"
	"github.com/DevRickLin/slack-tone-bot/internal/data"
	"github.com/DevRickLin/slack-tone-bot/internal/infra/llm"
	"github.com/DevRickLin/slack-tone-bot/internal/metrics"
	"github.com/DevRickLin/slack-tone-bot/internal/server"
	"github.com/DevRickLin/slack-tone-bot/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tonebot",
		Short:        "Slack bot that reads the tone of messages and suggests replies",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("prompts", "", "Path to prompts.yaml (overrides PROMPTS_CONFIG_PATH).")
	root.PersistentFlags().Bool("debug", false, "Verbose logging and gin debug mode.")

	root.AddCommand(newServeCmd(), newDetectCmd())
	return root
}

// loadConfig reads .env, the environment and the command's flags
func loadConfig(cmd *cobra.Command, bind map[string]string) (*conf.Config, *zap.Logger, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	v := conf.New()
	bind["prompts_path"] = "prompts"
	bind["debug"] = "debug"
	if err := bindFlags(v, cmd, bind); err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(v.GetBool("debug"))
	if err != nil {
		return nil, nil, err
	}

	cfg, err := conf.Load(v, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return cfg, logger, nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, bind map[string]string) error {
	for key, name := range bind {
		if err := v.BindPFlag(key, cmd.Flag(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Slack webhooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, map[string]string{"server.port": "port"})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := cfg.Validate(); err != nil {
				logger.Error("invalid config", zap.Error(err))
				return err
			}
			return serve(cfg, logger)
		},
	}
	cmd.Flags().Int("port", 0, "HTTP listen port (overrides PORT).")
	return cmd
}

func serve(cfg *conf.Config, logger *zap.Logger) error {
	llmClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	slackClient := data.NewSlackClient(cfg.Slack.BotToken, cfg.Slack.APIURL)
	logger.Info("clients ready", zap.String("model", llmClient.Model()))

	repos, err := data.NewRepositories(cfg, slackClient, llmClient, logger)
	if err != nil {
		return fmt.Errorf("create repositories: %w", err)
	}

	ucs := &biz.Usecases{
		Tone:       usecase.NewToneUsecase(repos.Tone, repos.Chat),
		Preference: usecase.NewPreferenceUsecase(repos.Preference),
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	reminders := service.NewReminderScheduler(repos.Chat, m, logger)
	bot := service.NewBotService(ucs, repos.Chat, repos.Marker, reminders, cfg.Reminder.Delay, m, logger)
	janitor := service.NewMarkerJanitor(repos.Marker, cfg.Store.MarkerRetention, logger)

	httpServer := api.NewServer(cfg, api.NewHandler(bot, m, logger), prometheus.DefaultGatherer, logger)
	srv := server.NewBotServer(httpServer, reminders, janitor, repos, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err = <-errCh:
		if err != nil {
			logger.Error("server exited", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	srv.Stop(shutdownCtx)
	return err
}

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <message>",
		Short: "Run tone detection on a message and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, map[string]string{})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := cfg.ValidateLLM(); err != nil {
				return err
			}

			client := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
			toneRepo := data.NewToneRepo(client, cfg.Prompts, logger)

			result, err := toneRepo.DetectTone(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s\n", data.ToneEmoji(result.Tone), result.Tone.Title(), out)
			return nil
		},
	}
	return cmd
}

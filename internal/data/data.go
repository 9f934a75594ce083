package data

import (
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
	"github.com/DevRickLin/slack-tone-bot/internal/conf"
	"github.com/DevRickLin/slack-tone-bot/internal/infra/llm"
)

// Repositories contains all repositories
type Repositories struct {
	Tone       repo.ToneRepo
	Chat       repo.ChatRepo
	Preference repo.PreferenceRepo
	Marker     repo.MarkerRepo
}

// NewRepositories creates all repositories
func NewRepositories(
	cfg *conf.Config,
	slackClient *slack.Client,
	llmClient *llm.Client,
	logger *zap.Logger,
) (*Repositories, error) {
	marker, err := NewMarkerRepo(cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Tone:       NewToneRepo(llmClient, cfg.Prompts, logger),
		Chat:       NewSlackRepo(slackClient),
		Preference: NewPreferenceRepo(cfg.Store.PrefsFile),
		Marker:     marker,
	}, nil
}

// NewMarkerRepo picks the SQLite store when a path is configured, the in-memory LRU otherwise
func NewMarkerRepo(cfg conf.StoreConfig, logger *zap.Logger) (repo.MarkerRepo, error) {
	if cfg.StateDBPath != "" {
		logger.Info("using sqlite marker store", zap.String("path", cfg.StateDBPath))
		return NewSQLiteMarkerRepo(cfg.StateDBPath)
	}
	logger.Info("using in-memory marker store", zap.Int("size", cfg.MarkerCacheSize))
	return NewMemoryMarkerRepo(cfg.MarkerCacheSize)
}

// Close releases repository resources
func (r *Repositories) Close() error {
	if r.Marker != nil {
		return r.Marker.Close()
	}
	return nil
}

package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
)

const janitorInterval = 6 * time.Hour

// MarkerJanitor periodically forgets analyze-prompt markers older than the retention window
type MarkerJanitor struct {
	markerRepo repo.MarkerRepo
	retention  time.Duration
	interval   time.Duration
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMarkerJanitor creates a new marker janitor
func NewMarkerJanitor(markerRepo repo.MarkerRepo, retention time.Duration, logger *zap.Logger) *MarkerJanitor {
	return &MarkerJanitor{
		markerRepo: markerRepo,
		retention:  retention,
		interval:   janitorInterval,
		logger:     logger.Named("janitor"),
	}
}

// Start starts the cleanup loop
func (j *MarkerJanitor) Start(ctx context.Context) {
	j.ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.loop()

	j.logger.Info("started", zap.Duration("interval", j.interval), zap.Duration("retention", j.retention))
}

// Stop stops the cleanup loop
func (j *MarkerJanitor) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
}

func (j *MarkerJanitor) loop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(j.ctx)
		}
	}
}

// RunOnce deletes expired markers
func (j *MarkerJanitor) RunOnce(ctx context.Context) {
	n, err := j.markerRepo.Cleanup(ctx, time.Now().Add(-j.retention))
	if err != nil {
		j.logger.Warn("marker cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Info("expired markers removed", zap.Int64("count", n))
	}
}

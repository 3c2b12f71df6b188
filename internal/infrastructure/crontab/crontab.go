package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"

	"docchat/chat-gateway/internal/config"
	"docchat/chat-gateway/internal/domain/usage"
	"docchat/chat-gateway/internal/infrastructure/logger"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

const CronJobTimeout = 2 * time.Minute

type Crontab struct {
	ctab         *crontab.Crontab
	usageService *usage.Service
}

func NewCrontab(usageService *usage.Service) *Crontab {
	return &Crontab{
		ctab:         crontab.New(),
		usageService: usageService,
	}
}

// Run schedules the background jobs and blocks until ctx is cancelled.
func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()

	cfg := config.GetGlobal()
	intervalMinutes := 1
	if cfg != nil && cfg.UsageRefreshInterval >= time.Minute {
		intervalMinutes = int(cfg.UsageRefreshInterval / time.Minute)
	}

	cronExpr := fmt.Sprintf("*/%d * * * *", intervalMinutes)
	if err := c.ctab.AddJob(cronExpr, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.usageService.RefreshAll(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add usage refresh job")
	}
	log.Info().Msgf("Usage refresh scheduled: every %d minute(s)", intervalMinutes)

	// Reload environment-backed config once a minute
	if err := c.ctab.AddJob("* * * * *", func() {
		config.Load()
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add env reload job")
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

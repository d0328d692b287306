package cli

import (
	"context"
	"errors"

	"github.com/telegram-work-analyzer/internal/config"
	"github.com/telegram-work-analyzer/internal/models"
	"github.com/telegram-work-analyzer/internal/scheduler"
)

// Execute implements the go-flags Commander interface for ScheduleCommand
func (c *ScheduleCommand) Execute(args []string) error {
	cfg, err := config.Load(c.globals.overrides(), func(cfg *models.Config) {
		if c.Schedule != "" {
			cfg.ReportSchedule = c.Schedule
		}
	})
	if err != nil {
		return err
	}
	if cfg.ReportSchedule == "" {
		return &models.ConfigError{Field: "REPORT_SCHEDULE", Reason: "is required (or pass --schedule)"}
	}

	rt := newApp(cfg)
	defer rt.Close()

	location, err := scheduler.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}

	deliver := cfg.DeliveryConfigured()
	runner, err := rt.runner(true, deliver)
	if err != nil {
		return err
	}

	job := func(ctx context.Context) error {
		var err error
		if deliver {
			_, err = runner.RunDelivery(ctx)
		} else {
			_, err = runner.RunFiles(ctx)
		}
		return err
	}

	sched, err := scheduler.NewScheduler(cfg.ReportSchedule, location, job, rt.logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if c.Now {
		if err := job(ctx); err != nil {
			rt.logger.Error().Err(err).Msg("Initial run failed")
		}
	}

	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

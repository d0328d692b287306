// Package scheduler repeats analysis runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled run
type Job func(ctx context.Context) error

// Scheduler runs a job on a cron schedule until its context is cancelled.
// A run that is still going when the next one is due causes that tick to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	job      Job
	timezone *time.Location
	logger   zerolog.Logger
}

// NewScheduler validates spec (standard 5-field cron or a descriptor such as @daily)
func NewScheduler(spec string, timezone *time.Location, job Job, logger zerolog.Logger) (*Scheduler, error) {
	if timezone == nil {
		timezone = time.UTC
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	s := &Scheduler{
		spec:     spec,
		job:      job,
		timezone: timezone,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}

	cronLogger := cronLogAdapter{logger: s.logger}
	s.cron = cron.New(
		cron.WithLocation(timezone),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
	)

	return s, nil
}

// Start schedules the job and blocks until ctx is cancelled and the running job has finished
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runJob(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", s.spec).
		Str("timezone", s.timezone.String()).
		Time("next_run", s.NextRun()).
		Msg("Scheduler started")

	<-ctx.Done()

	s.logger.Info().Msg("Stopping scheduler, waiting for running job...")
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")

	return ctx.Err()
}

// NextRun returns the next activation time, zero before Start
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// runJob executes one run; failures are logged and the schedule continues
func (s *Scheduler) runJob(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Panic recovered in scheduled run")
		}
	}()

	if ctx.Err() != nil {
		return
	}

	startTime := time.Now()
	s.logger.Info().Msg("Starting scheduled run")

	if err := s.job(ctx); err != nil {
		s.logger.Error().
			Err(err).
			Dur("duration", time.Since(startTime)).
			Msg("Scheduled run failed")
		return
	}

	s.logger.Info().
		Dur("duration", time.Since(startTime)).
		Time("next_run", s.NextRun()).
		Msg("Scheduled run completed")
}

// cronLogAdapter routes cron's internal logging to zerolog
type cronLogAdapter struct {
	logger zerolog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

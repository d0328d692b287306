// Package pipeline wires one analysis run from chat history to reports.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/analysis"
	"github.com/telegram-work-analyzer/internal/bot"
	"github.com/telegram-work-analyzer/internal/collector"
	"github.com/telegram-work-analyzer/internal/models"
	"github.com/telegram-work-analyzer/internal/report"
)

// Source opens a chat session for the duration of fn and releases it afterwards
type Source interface {
	Run(ctx context.Context, fn func(ctx context.Context, s collector.Session) error) error
}

// StaticSource serves an already open session, such as a loaded export
type StaticSource struct {
	Session collector.Session
}

// Run calls fn with the wrapped session
func (s StaticSource) Run(ctx context.Context, fn func(ctx context.Context, s collector.Session) error) error {
	return fn(ctx, s.Session)
}

// Outcome is everything a run produced
type Outcome struct {
	RunID      string
	Collection *models.CollectionResult
	Analysis   *models.AnalysisResult
	Files      []string
	Delivery   *bot.DeliveryResult
}

// Runner executes analysis runs
type Runner struct {
	source     Source
	collect    collector.Options
	analyzer   *analysis.Analyzer
	writer     *report.Writer
	dispatcher *bot.Dispatcher
	logger     zerolog.Logger
}

// NewRunner creates a runner. writer and dispatcher may be nil when that output is not used.
func NewRunner(
	source Source,
	collect collector.Options,
	analyzer *analysis.Analyzer,
	writer *report.Writer,
	dispatcher *bot.Dispatcher,
	logger zerolog.Logger,
) *Runner {
	return &Runner{
		source:     source,
		collect:    collect,
		analyzer:   analyzer,
		writer:     writer,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// RunFiles collects, analyzes and writes the report files. Errors are returned to the caller.
func (r *Runner) RunFiles(ctx context.Context) (*Outcome, error) {
	if r.writer == nil {
		return nil, fmt.Errorf("file output is not configured")
	}
	return r.run(ctx, false)
}

// RunDelivery collects, analyzes and sends the report fragments, also writing files when a writer is set.
// On failure a notification goes to the delivery chat before the error is returned.
func (r *Runner) RunDelivery(ctx context.Context) (*Outcome, error) {
	if r.dispatcher == nil {
		return nil, fmt.Errorf("delivery is not configured")
	}

	outcome, err := r.run(ctx, true)
	if err != nil {
		r.dispatcher.NotifyError(context.WithoutCancel(ctx), err)
	}
	return outcome, err
}

// run executes one pass; panics are converted to errors so the session is always released
func (r *Runner) run(ctx context.Context, deliver bool) (outcome *Outcome, err error) {
	runID := uuid.NewString()
	logger := r.logger.With().Str("run_id", runID).Logger()
	startTime := time.Now()
	outcome = &Outcome{RunID: runID}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Msg("Panic recovered in run")
			err = fmt.Errorf("run %s panicked: %v", runID, rec)
		}
	}()

	logger.Info().Bool("deliver", deliver).Bool("files", r.writer != nil).Msg("Run started")

	err = r.source.Run(ctx, func(ctx context.Context, s collector.Session) error {
		result, err := collector.New(s, r.collect, logger).Collect(ctx)
		if err != nil {
			return err
		}
		outcome.Collection = result
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Collection failed")
		return outcome, err
	}

	outcome.Analysis, err = r.analyzer.Analyze(ctx, outcome.Collection)
	if err != nil {
		logger.Error().Err(err).Msg("Analysis failed")
		return outcome, err
	}

	if r.writer != nil {
		outcome.Files, err = r.writer.Write(outcome.Analysis, outcome.Collection)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to write reports")
			return outcome, err
		}
	}

	if deliver {
		fragments := report.Fragments(outcome.Analysis, outcome.Collection)
		outcome.Delivery, err = r.dispatcher.Deliver(ctx, fragments)
		if err != nil {
			logger.Error().Err(err).Msg("Delivery interrupted")
			return outcome, err
		}
	}

	logger.Info().
		Int("chats", len(outcome.Collection.Chats)).
		Int("my_messages", outcome.Collection.Stats.TotalMyMessages).
		Bool("degraded", outcome.Analysis.IsDegraded()).
		Int("files", len(outcome.Files)).
		Dur("duration", time.Since(startTime)).
		Msg("Run completed")

	return outcome, nil
}

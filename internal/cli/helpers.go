package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/analysis"
	"github.com/telegram-work-analyzer/internal/anthropic"
	"github.com/telegram-work-analyzer/internal/bot"
	"github.com/telegram-work-analyzer/internal/collector"
	"github.com/telegram-work-analyzer/internal/config"
	"github.com/telegram-work-analyzer/internal/export"
	"github.com/telegram-work-analyzer/internal/llm"
	"github.com/telegram-work-analyzer/internal/models"
	"github.com/telegram-work-analyzer/internal/pipeline"
	"github.com/telegram-work-analyzer/internal/ratelimit"
	"github.com/telegram-work-analyzer/internal/report"
	"github.com/telegram-work-analyzer/internal/scheduler"
	"github.com/telegram-work-analyzer/internal/telegram"
)

// overrides turns the global flags into config overrides
func (g *GlobalFlags) overrides() func(*models.Config) {
	return func(cfg *models.Config) {
		if g.Days != 0 {
			cfg.DaysToAnalyze = g.Days
		}
		if g.MaxChats != 0 {
			cfg.MaxChats = g.MaxChats
		}
		if g.MaxMessages != 0 {
			cfg.MaxMessagesPerChat = g.MaxMessages
		}
		if g.Out != "" {
			cfg.ReportsDir = g.Out
		}
		if g.Export != "" {
			cfg.TelegramExportFile = g.Export
		}
		if g.LogLevel != "" {
			cfg.LogLevel = g.LogLevel
		}
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// setupLogger configures and returns a zerolog logger
func setupLogger(level, environment string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if environment == "development" {
		// Pretty console output for development
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// app holds the collaborators of one command invocation
type app struct {
	cfg     *models.Config
	logger  zerolog.Logger
	closers []func()
}

func newApp(cfg *models.Config) *app {
	logger := setupLogger(cfg.LogLevel, cfg.Environment)
	logger.Info().
		Str("environment", cfg.Environment).
		Str("provider", cfg.LLMProvider).
		Bool("export", cfg.UseExport()).
		Int("days", cfg.DaysToAnalyze).
		Int("max_chats", cfg.MaxChats).
		Int("max_messages_per_chat", cfg.MaxMessagesPerChat).
		Msg("Starting Telegram work analyzer")

	return &app{cfg: cfg, logger: logger}
}

// Close releases everything opened by the app
func (r *app) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// source opens the configured chat source
func (r *app) source() (pipeline.Source, error) {
	if r.cfg.UseExport() {
		session, err := export.Open(r.cfg.TelegramExportFile, r.logger)
		if err != nil {
			return nil, err
		}
		return pipeline.StaticSource{Session: session}, nil
	}
	return telegram.NewClient(r.cfg, r.logger), nil
}

// completer creates the configured LLM backend
func (r *app) completer() analysis.Completer {
	switch r.cfg.LLMProvider {
	case config.ProviderGemini:
		client := llm.NewClient(r.cfg.GeminiAPIKey, r.cfg.GeminiModel, r.cfg.LLMTimeout, r.logger)
		r.closers = append(r.closers, func() {
			if err := client.Close(); err != nil {
				r.logger.Error().Err(err).Msg("Failed to close LLM client")
			}
		})
		return client
	default:
		client := anthropic.NewClient(
			r.cfg.AnthropicAPIKey,
			anthropic.WithBaseURL(r.cfg.AnthropicURL),
			anthropic.WithTimeout(time.Duration(r.cfg.LLMTimeout)*time.Second),
		)
		return anthropic.NewCompleter(client, r.cfg.AnthropicModel, r.logger)
	}
}

// dispatcher connects the delivery bot, nil when delivery is not configured
func (r *app) dispatcher() (*bot.Dispatcher, error) {
	if !r.cfg.DeliveryConfigured() {
		return nil, nil
	}

	telegramBot, err := bot.New(r.cfg.TelegramBotToken, r.cfg.LogLevel == "debug", r.logger)
	if err != nil {
		return nil, err
	}
	pacer := ratelimit.NewPacer(time.Duration(r.cfg.DeliveryDelayMs)*time.Millisecond, r.logger)

	return bot.NewDispatcher(telegramBot, r.cfg.ReportChatID, pacer, r.logger), nil
}

// runner wires a pipeline; files and delivery select the outputs
func (r *app) runner(files, delivery bool) (*pipeline.Runner, error) {
	location, err := scheduler.LoadLocation(r.cfg.Timezone)
	if err != nil {
		return nil, err
	}

	source, err := r.source()
	if err != nil {
		return nil, err
	}

	var writer *report.Writer
	if files {
		writer = report.NewWriter(r.cfg.ReportsDir, r.logger)
	}

	var dispatcher *bot.Dispatcher
	if delivery {
		if dispatcher, err = r.dispatcher(); err != nil {
			return nil, err
		}
	}

	return pipeline.NewRunner(
		source,
		collector.Options{
			Days:               r.cfg.DaysToAnalyze,
			MaxMessagesPerChat: r.cfg.MaxMessagesPerChat,
			MaxChats:           r.cfg.MaxChats,
			Location:           location,
		},
		analysis.NewAnalyzer(r.completer(), r.cfg.LLMMaxTokens, r.logger),
		writer,
		dispatcher,
		r.logger,
	), nil
}

// printOutcome tells the user where the results went
func printOutcome(out io.Writer, outcome *pipeline.Outcome, dir string) {
	if outcome == nil || outcome.Collection == nil {
		return
	}
	fmt.Fprintf(out, "Проанализировано сообщений: %d в %d чатах\n",
		outcome.Collection.Stats.TotalMyMessages, len(outcome.Collection.Chats))
	if outcome.Analysis.IsDegraded() {
		fmt.Fprintln(out, "Ответ модели не удалось разобрать как JSON, сохранён исходный текст")
	}
	if len(outcome.Files) > 0 {
		fmt.Fprintf(out, "Отчёты сохранены в %s/\n", dir)
		fmt.Fprintf(out, "Открой %s/%s для полного отчёта\n", dir, report.MainReportFile)
	}
	if outcome.Delivery != nil {
		fmt.Fprintf(out, "Отправлено сообщений: %d, с ошибкой: %d\n", outcome.Delivery.Sent, outcome.Delivery.Failed)
	}
}

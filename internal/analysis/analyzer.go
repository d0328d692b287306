package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/models"
)

// DefaultMaxTokens is the output budget of the analysis request
const DefaultMaxTokens = 8000

// Completer sends a single prompt to a language model and returns its text
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Analyzer turns a collection into a structured report using a language model
type Analyzer struct {
	completer Completer
	maxTokens int
	logger    zerolog.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(completer Completer, maxTokens int, logger zerolog.Logger) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Analyzer{
		completer: completer,
		maxTokens: maxTokens,
		logger:    logger.With().Str("component", "analyzer").Logger(),
	}
}

// Analyze builds the prompt, calls the model and parses its answer
func (a *Analyzer) Analyze(ctx context.Context, result *models.CollectionResult) (*models.AnalysisResult, error) {
	startTime := time.Now()
	prompt := BuildPrompt(result)

	a.logger.Info().
		Int("prompt_length", len([]rune(prompt))).
		Int("my_messages", result.Stats.TotalMyMessages).
		Int("max_tokens", a.maxTokens).
		Msg("Sending analysis request")

	text, err := a.completer.Complete(ctx, prompt, a.maxTokens)
	if err != nil {
		var providerErr *models.ProviderError
		if errors.As(err, &providerErr) {
			return nil, err
		}
		return nil, &models.ProviderError{Provider: "llm", Err: err}
	}

	analysis := ParseResponse(text)
	if analysis.IsDegraded() {
		a.logger.Warn().
			Int("response_length", len([]rune(text))).
			Msg("Model response is not valid JSON, keeping raw text")
	}

	a.logger.Info().
		Int("response_length", len([]rune(text))).
		Int("sop_candidates", len(analysis.SOPs())).
		Int("actions", len(analysis.Actions())).
		Dur("duration", time.Since(startTime)).
		Msg("Analysis completed")

	return analysis, nil
}

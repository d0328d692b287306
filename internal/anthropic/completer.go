package anthropic

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/models"
)

const providerName = "anthropic"

// Completer sends single-turn prompts to one model
type Completer struct {
	client *Client
	model  string
	logger zerolog.Logger
}

// NewCompleter creates a completer bound to model
func NewCompleter(client *Client, model string, logger zerolog.Logger) *Completer {
	return &Completer{
		client: client,
		model:  model,
		logger: logger.With().Str("component", "anthropic").Logger(),
	}
}

// Complete sends prompt as a single user turn and returns the reply text
func (c *Completer) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	startTime := time.Now()

	resp, err := c.client.CreateMessage(ctx, &MessagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", &models.ProviderError{Provider: providerName, Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &models.ProviderError{Provider: providerName, Err: errors.New("empty response")}
	}

	// A reply cut at the token limit usually ends mid-JSON and will be parsed as degraded
	if resp.StopReason == "max_tokens" {
		c.logger.Warn().
			Int("max_tokens", maxTokens).
			Int("output_tokens", resp.Usage.OutputTokens).
			Msg("Completion stopped at the token limit")
	}

	c.logger.Info().
		Str("model", resp.Model).
		Int("input_tokens", resp.Usage.InputTokens).
		Int("output_tokens", resp.Usage.OutputTokens).
		Str("stop_reason", resp.StopReason).
		Dur("duration", time.Since(startTime)).
		Msg("Completion received")

	return text, nil
}

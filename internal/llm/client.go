// Package llm provides the Gemini completion backend.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/models"
	"google.golang.org/api/option"
)

const providerName = "gemini"

// AnalysisTemperature keeps the structured answer close to the requested schema
const AnalysisTemperature = 0.2

// Client is a Gemini completion client
type Client struct {
	apiKey      string
	model       string
	timeout     time.Duration
	logger      zerolog.Logger
	genaiClient *genai.Client
	mu          sync.Mutex
}

// NewClient creates a new Gemini client; the API connection is opened on first use
func NewClient(apiKey, model string, timeout int, logger zerolog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		timeout: time.Duration(timeout) * time.Second,
		logger:  logger.With().Str("component", "llm").Logger(),
	}
}

// getClient returns or creates a genai client (thread-safe)
func (c *Client) getClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genaiClient != nil {
		return c.genaiClient, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c.genaiClient = client
	c.logger.Debug().Msg("Gemini client created and cached")
	return c.genaiClient, nil
}

// Close releases the underlying connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genaiClient == nil {
		return nil
	}
	err := c.genaiClient.Close()
	c.genaiClient = nil
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to close Gemini client")
		return err
	}
	return nil
}

// Complete sends a single prompt and returns the reply text.
// Failures are not retried; the run reports them and stops.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	startTime := time.Now()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	client, err := c.getClient(ctx)
	if err != nil {
		return "", &models.ProviderError{Provider: providerName, Err: err}
	}

	model := client.GenerativeModel(c.model)
	model.SetTemperature(AnalysisTemperature)
	model.SetMaxOutputTokens(int32(maxTokens))

	c.logger.Debug().
		Str("model", c.model).
		Int("prompt_length", len([]rune(prompt))).
		Int("max_tokens", maxTokens).
		Msg("Sending request to LLM")

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &models.ProviderError{Provider: providerName, Err: fmt.Errorf("failed to generate content: %w", err)}
	}

	text, err := ResponseText(resp)
	if err != nil {
		return "", &models.ProviderError{Provider: providerName, Err: err}
	}

	c.logger.Info().
		Str("model", c.model).
		Int("response_length", len([]rune(text))).
		Dur("duration", time.Since(startTime)).
		Msg("LLM response generated")

	return text, nil
}

// ResponseText joins the text parts of the first candidate
func ResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no response candidates from LLM")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content parts in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no text in response")
	}
	return sb.String(), nil
}

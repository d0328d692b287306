// Package bot delivers reports through the Telegram Bot API.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Bot sends messages on behalf of a bot account
type Bot struct {
	api    *tgbotapi.BotAPI
	logger zerolog.Logger
}

// New authorizes the bot token against the Bot API
func New(token string, debug bool, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	api.Debug = debug

	return NewWithAPI(api, logger), nil
}

// NewWithAPI wraps an already authorized API client
func NewWithAPI(api *tgbotapi.BotAPI, logger zerolog.Logger) *Bot {
	logger.Info().
		Str("username", api.Self.UserName).
		Int64("id", api.Self.ID).
		Msg("Telegram bot authorized")

	return &Bot{
		api:    api,
		logger: logger.With().Str("component", "bot").Logger(),
	}
}

// SendMessage sends one text message, with legacy Markdown formatting when markdown is set.
// Failures are returned as-is; there is no retry.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().
			Err(err).
			Int64("chat_id", chatID).
			Int("length", len([]rune(text))).
			Msg("Failed to send message")
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// Username returns the bot username
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

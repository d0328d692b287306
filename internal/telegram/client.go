// Package telegram reads the user's own account over MTProto.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/collector"
	"github.com/telegram-work-analyzer/internal/models"
)

// LoginHint tells the user how to fix a missing or expired session
const LoginHint = "run `analyzer login` to authorize this device"

// Client owns the MTProto connection settings
type Client struct {
	appID         int
	appHash       string
	sessionPath   string
	sessionString string
	logger        zerolog.Logger
}

// NewClient creates a client; no connection is made until Run or Login
func NewClient(cfg *models.Config, logger zerolog.Logger) *Client {
	return &Client{
		appID:         cfg.TelegramAPIID,
		appHash:       cfg.TelegramAPIHash,
		sessionPath:   cfg.TelegramSessionFile,
		sessionString: cfg.TelegramSessionString,
		logger:        logger.With().Str("component", "telegram").Logger(),
	}
}

// Run connects, checks authorization and calls fn with a read-only session.
// The connection is closed when Run returns, whatever fn returned.
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context, s collector.Session) error) error {
	storage, err := c.storage(ctx)
	if err != nil {
		return err
	}

	client := telegram.NewClient(c.appID, c.appHash, telegram.Options{SessionStorage: storage})
	startTime := time.Now()

	err = client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return &models.AuthError{Hint: LoginHint, Err: err}
		}
		if !status.Authorized {
			return &models.AuthError{Hint: LoginHint}
		}

		self, err := client.Self(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current user: %w", err)
		}

		c.logger.Info().
			Int64("user_id", self.ID).
			Str("username", self.Username).
			Msg("Telegram session connected")

		return fn(ctx, newAPISession(client.API(), self, c.logger))
	})

	c.logger.Info().Dur("duration", time.Since(startTime)).Msg("Telegram session closed")
	return err
}

// storage returns the session file storage, seeding it from a session string when the file is absent
func (c *Client) storage(ctx context.Context) (*session.FileStorage, error) {
	storage := &session.FileStorage{Path: c.sessionPath}
	if c.sessionString == "" {
		return storage, nil
	}

	if _, err := os.Stat(c.sessionPath); err == nil {
		return storage, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat session file: %w", err)
	}

	data, err := session.TelethonSession(c.sessionString)
	if err != nil {
		return nil, &models.AuthError{Hint: "check TELEGRAM_SESSION_STRING", Err: err}
	}
	loader := session.Loader{Storage: storage}
	if err := loader.Save(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to import session string: %w", err)
	}

	c.logger.Info().Str("path", c.sessionPath).Msg("Session string imported")
	return storage, nil
}

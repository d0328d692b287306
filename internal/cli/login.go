package cli

import (
	"fmt"

	"github.com/telegram-work-analyzer/internal/config"
	"github.com/telegram-work-analyzer/internal/telegram"
)

// Execute implements the go-flags Commander interface for LoginCommand
func (c *LoginCommand) Execute(args []string) error {
	cfg, err := config.LoadEnv(c.globals.overrides())
	if err != nil {
		return err
	}
	if err := config.ValidateLogin(cfg); err != nil {
		return err
	}

	phone := cfg.TelegramPhone
	if c.Phone != "" {
		phone = c.Phone
	}

	rt := newApp(cfg)
	defer rt.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := telegram.NewClient(cfg, rt.logger).Login(ctx, phone, c.in, c.out); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Сессия сохранена в %s\n", cfg.TelegramSessionFile)
	return nil
}

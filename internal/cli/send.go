package cli

import (
	"github.com/telegram-work-analyzer/internal/config"
)

// Execute implements the go-flags Commander interface for SendCommand
func (c *SendCommand) Execute(args []string) error {
	cfg, err := config.Load(c.globals.overrides())
	if err != nil {
		return err
	}
	if err := config.ValidateDelivery(cfg); err != nil {
		return err
	}

	rt := newApp(cfg)
	defer rt.Close()

	// Files are written only when an output directory was asked for
	runner, err := rt.runner(c.globals.Out != "", true)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	outcome, err := runner.RunDelivery(ctx)
	if err != nil {
		return err
	}

	printOutcome(c.out, outcome, cfg.ReportsDir)
	return nil
}

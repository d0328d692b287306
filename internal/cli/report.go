package cli

import (
	"github.com/telegram-work-analyzer/internal/config"
)

// Execute implements the go-flags Commander interface for ReportCommand
func (c *ReportCommand) Execute(args []string) error {
	cfg, err := config.Load(c.globals.overrides())
	if err != nil {
		return err
	}

	rt := newApp(cfg)
	defer rt.Close()

	runner, err := rt.runner(true, false)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	outcome, err := runner.RunFiles(ctx)
	if err != nil {
		return err
	}

	printOutcome(c.out, outcome, cfg.ReportsDir)
	return nil
}

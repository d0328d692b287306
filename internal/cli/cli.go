// Package cli implements the analyzer command line.
package cli

import (
	"fmt"
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing
type commands struct {
	Report   *ReportCommand
	Send     *SendCommand
	Login    *LoginCommand
	Schedule *ScheduleCommand
}

// buildParser constructs the go-flags parser with all subcommands registered
func buildParser(in io.Reader, out io.Writer) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "analyzer"
	parser.LongDescription = "Analyzes your recent Telegram messages with a language model and produces work reports, SOPs and an action plan."

	cmds := &commands{
		Report:   &ReportCommand{globals: &globals, out: out},
		Send:     &SendCommand{globals: &globals, out: out},
		Login:    &LoginCommand{globals: &globals, in: in, out: out},
		Schedule: &ScheduleCommand{globals: &globals, out: out},
	}

	parser.AddCommand("report", "Analyze and write report files", "Collect recent messages, analyze them and write Markdown and JSON reports.", cmds.Report)
	parser.AddCommand("send", "Analyze and send the report to Telegram", "Collect recent messages, analyze them and send the report through the delivery bot.", cmds.Send)
	parser.AddCommand("login", "Authorize the Telegram session", "Sign in with a phone number and login code and store the session file.", cmds.Login)
	parser.AddCommand("schedule", "Run the analysis on a schedule", "Repeat the analysis on a cron schedule until interrupted.", cmds.Schedule)

	return parser, &globals, cmds
}

// Run is the main entry point using os.Args
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand
func RunWithArgs(version string, args []string) error {
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("analyzer %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(os.Stdin, os.Stdout)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}

	return nil
}

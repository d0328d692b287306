package cli

import "io"

// GlobalFlags override the environment configuration for one invocation
type GlobalFlags struct {
	Days        int    `long:"days" description:"Days of history to analyze (overrides DAYS_TO_ANALYZE)"`
	MaxChats    int    `long:"max-chats" description:"Maximum number of dialogs (overrides MAX_CHATS)"`
	MaxMessages int    `long:"max-messages" description:"Maximum messages per dialog (overrides MAX_MESSAGES_PER_CHAT)"`
	Out         string `long:"out" description:"Reports directory (overrides REPORTS_DIR)"`
	Export      string `long:"export" description:"Read a Telegram Desktop result.json instead of a live session"`
	LogLevel    string `long:"log-level" description:"Override log level"`
	Version     bool   `long:"version" description:"Show version and exit"`
}

// ReportCommand runs one analysis and writes the report files
type ReportCommand struct {
	globals *GlobalFlags
	out     io.Writer
}

// SendCommand runs one analysis and sends it through the delivery bot
type SendCommand struct {
	globals *GlobalFlags
	out     io.Writer
}

// LoginCommand authorizes the Telegram session interactively
type LoginCommand struct {
	Phone string `long:"phone" description:"Phone number in international format (overrides TELEGRAM_PHONE)"`

	globals *GlobalFlags
	in      io.Reader
	out     io.Writer
}

// ScheduleCommand repeats the analysis on a cron schedule until interrupted
type ScheduleCommand struct {
	Schedule string `long:"schedule" description:"Cron expression (overrides REPORT_SCHEDULE), e.g. \"0 9 * * 1\""`
	Now      bool   `long:"now" description:"Also run once immediately"`

	globals *GlobalFlags
	out     io.Writer
}

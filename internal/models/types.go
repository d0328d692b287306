package models

import "time"

// Category represents the kind of conversation a dialog belongs to
type Category string

const (
	CategoryPersonal   Category = "personal"
	CategoryGroup      Category = "group"
	CategorySupergroup Category = "supergroup"
	CategoryChannel    Category = "channel"
	CategoryBot        Category = "bot"
	CategoryUnknown    Category = "unknown"
)

// Categories lists every category in report order
var Categories = []Category{
	CategoryPersonal,
	CategoryGroup,
	CategorySupergroup,
	CategoryChannel,
	CategoryBot,
	CategoryUnknown,
}

// String returns string representation of Category
func (c Category) String() string {
	return string(c)
}

// EntityKind tags the shape of a raw chat entity
type EntityKind int

const (
	EntityUnknown EntityKind = iota
	// EntityUser is a person or a bot account
	EntityUser
	// EntityChat is a small (basic) group
	EntityChat
	// EntityChannel is a broadcast channel or a supergroup (megagroup)
	EntityChannel
)

// Entity is a raw dialog peer as reported by the chat platform
type Entity struct {
	Kind      EntityKind
	ID        int64
	FirstName string
	LastName  string
	Title     string
	Bot       bool
	Megagroup bool
}

// Identity is the authenticated account the analysis runs for
type Identity struct {
	ID        int64
	FirstName string
	Username  string
}

// RawMessage is a message as fetched from a dialog history
type RawMessage struct {
	ID       int
	Date     time.Time
	Text     string
	SenderID int64
}

// Config represents application configuration
type Config struct {
	// Telegram user session (MTProto)
	TelegramAPIID         int
	TelegramAPIHash       string
	TelegramSessionFile   string
	TelegramSessionString string
	TelegramPhone         string
	TelegramExportFile    string

	// LLM settings
	LLMProvider     string
	AnthropicAPIKey string
	AnthropicModel  string
	AnthropicURL    string
	GeminiAPIKey    string
	GeminiModel     string
	LLMMaxTokens    int
	LLMTimeout      int

	// Delivery bot settings
	TelegramBotToken string
	ReportChatID     int64
	DeliveryDelayMs  int

	// Collection tunables
	DaysToAnalyze      int
	MaxMessagesPerChat int
	MaxChats           int

	// App settings
	ReportsDir     string
	ReportSchedule string
	Timezone       string
	LogLevel       string
	Environment    string
}

// UseExport reports whether collection reads a Telegram Desktop export instead of a live session
func (c *Config) UseExport() bool {
	return c.TelegramExportFile != ""
}

// DeliveryConfigured reports whether bot credentials for report delivery are present
func (c *Config) DeliveryConfigured() bool {
	return c.TelegramBotToken != "" && c.ReportChatID != 0
}

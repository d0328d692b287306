package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/telegram-work-analyzer/internal/models"
)

const (
	// ProviderAnthropic selects the Anthropic Messages API
	ProviderAnthropic = "anthropic"
	// ProviderGemini selects the Gemini API
	ProviderGemini = "gemini"
)

// Load loads configuration from environment variables, applies overrides and validates the result
func Load(overrides ...func(*models.Config)) (*models.Config, error) {
	config, err := LoadEnv(overrides...)
	if err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadEnv reads the optional .env file and the environment, then applies overrides.
// Only malformed numbers are reported; the result is not validated.
func LoadEnv(overrides ...func(*models.Config)) (*models.Config, error) {
	// Try to load .env file (optional, ignore error if not found)
	_ = godotenv.Load()

	if err := checkNumbers(); err != nil {
		return nil, err
	}

	config := FromEnv()
	for _, override := range overrides {
		override(config)
	}
	return config, nil
}

// numericKeys are the variables FromEnv parses as integers
var numericKeys = []string{
	"TELEGRAM_API_ID",
	"TELEGRAM_REPORT_CHAT_ID",
	"LLM_MAX_TOKENS",
	"LLM_TIMEOUT",
	"DELIVERY_DELAY_MS",
	"DAYS_TO_ANALYZE",
	"MAX_MESSAGES_PER_CHAT",
	"MAX_CHATS",
}

// checkNumbers rejects numeric variables that are set but do not parse
func checkNumbers() error {
	for _, key := range numericKeys {
		value := os.Getenv(key)
		if value == "" {
			continue
		}
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return &models.ConfigError{Field: key, Reason: fmt.Sprintf("must be an integer, got %q", value)}
		}
	}
	return nil
}

// FromEnv reads configuration from the environment without validating it
func FromEnv() *models.Config {
	return &models.Config{
		// Telegram user session
		TelegramAPIID:         getEnvInt("TELEGRAM_API_ID", 0),
		TelegramAPIHash:       getEnv("TELEGRAM_API_HASH", ""),
		TelegramSessionFile:   getEnv("TELEGRAM_SESSION_FILE", "work_analyzer_session.json"),
		TelegramSessionString: getEnv("TELEGRAM_SESSION_STRING", ""),
		TelegramPhone:         getEnv("TELEGRAM_PHONE", ""),
		TelegramExportFile:    getEnv("TELEGRAM_EXPORT_FILE", ""),

		// LLM settings
		LLMProvider:     getEnv("LLM_PROVIDER", ProviderAnthropic),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		AnthropicURL:    getEnv("ANTHROPIC_BASE_URL", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		LLMMaxTokens:    getEnvInt("LLM_MAX_TOKENS", 8000),
		LLMTimeout:      getEnvInt("LLM_TIMEOUT", 300),

		// Delivery bot settings
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		ReportChatID:     getEnvInt64("TELEGRAM_REPORT_CHAT_ID", 0),
		DeliveryDelayMs:  getEnvInt("DELIVERY_DELAY_MS", 500),

		// Collection tunables
		DaysToAnalyze:      getEnvInt("DAYS_TO_ANALYZE", 30),
		MaxMessagesPerChat: getEnvInt("MAX_MESSAGES_PER_CHAT", 500),
		MaxChats:           getEnvInt("MAX_CHATS", 50),

		// App settings
		ReportsDir:     getEnv("REPORTS_DIR", "reports"),
		ReportSchedule: getEnv("REPORT_SCHEDULE", ""),
		Timezone:       getEnv("TIMEZONE", "UTC"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),
	}
}

// Validate checks if all required configuration values are set
func Validate(cfg *models.Config) error {
	// A chat source is mandatory: a live session or an export file
	if !cfg.UseExport() {
		if cfg.TelegramAPIID == 0 {
			return &models.ConfigError{Field: "TELEGRAM_API_ID", Reason: "is required (or set TELEGRAM_EXPORT_FILE)"}
		}
		if cfg.TelegramAPIHash == "" {
			return &models.ConfigError{Field: "TELEGRAM_API_HASH", Reason: "is required (or set TELEGRAM_EXPORT_FILE)"}
		}
	}

	switch cfg.LLMProvider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return &models.ConfigError{Field: "ANTHROPIC_API_KEY", Reason: "is required"}
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return &models.ConfigError{Field: "GEMINI_API_KEY", Reason: "is required"}
		}
	default:
		return &models.ConfigError{
			Field:  "LLM_PROVIDER",
			Reason: fmt.Sprintf("must be one of: %s, %s; got %s", ProviderAnthropic, ProviderGemini, cfg.LLMProvider),
		}
	}

	// Validate positive values
	positive := []struct {
		name  string
		value int
	}{
		{"DAYS_TO_ANALYZE", cfg.DaysToAnalyze},
		{"MAX_MESSAGES_PER_CHAT", cfg.MaxMessagesPerChat},
		{"MAX_CHATS", cfg.MaxChats},
		{"LLM_MAX_TOKENS", cfg.LLMMaxTokens},
		{"LLM_TIMEOUT", cfg.LLMTimeout},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &models.ConfigError{Field: p.name, Reason: fmt.Sprintf("must be positive, got %d", p.value)}
		}
	}
	if cfg.DeliveryDelayMs < 0 {
		return &models.ConfigError{Field: "DELIVERY_DELAY_MS", Reason: fmt.Sprintf("must not be negative, got %d", cfg.DeliveryDelayMs)}
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return &models.ConfigError{
			Field:  "LOG_LEVEL",
			Reason: fmt.Sprintf("must be one of: debug, info, warn, error; got %s", cfg.LogLevel),
		}
	}

	return nil
}

// ValidateDelivery checks the settings needed to send reports through the bot
func ValidateDelivery(cfg *models.Config) error {
	if cfg.TelegramBotToken == "" {
		return &models.ConfigError{Field: "TELEGRAM_BOT_TOKEN", Reason: "is required for delivery"}
	}
	if cfg.ReportChatID == 0 {
		return &models.ConfigError{Field: "TELEGRAM_REPORT_CHAT_ID", Reason: "is required for delivery"}
	}
	return nil
}

// ValidateLogin checks the settings needed for interactive login
func ValidateLogin(cfg *models.Config) error {
	if cfg.TelegramAPIID == 0 {
		return &models.ConfigError{Field: "TELEGRAM_API_ID", Reason: "is required"}
	}
	if cfg.TelegramAPIHash == "" {
		return &models.ConfigError{Field: "TELEGRAM_API_HASH", Reason: "is required"}
	}
	return nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves environment variable as integer or returns default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvInt64 retrieves environment variable as int64 or returns default value
func getEnvInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

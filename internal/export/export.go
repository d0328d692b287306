// Package export serves a Telegram Desktop JSON export as a read-only chat session.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/models"
)

// Telegram Desktop chat types
const (
	TypePersonal          = "personal_chat"
	TypeBot               = "bot_chat"
	TypeSavedMessages     = "saved_messages"
	TypePrivateGroup      = "private_group"
	TypePrivateSupergroup = "private_supergroup"
	TypePublicSupergroup  = "public_supergroup"
	TypePrivateChannel    = "private_channel"
	TypePublicChannel     = "public_channel"
)

// Export is the top level of a full account export (result.json)
type Export struct {
	PersonalInformation PersonalInformation `json:"personal_information"`
	Chats               struct {
		List []Chat `json:"list"`
	} `json:"chats"`
}

// PersonalInformation describes the exporting account
type PersonalInformation struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Chat is one exported dialog
type Chat struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	ID       int64     `json:"id"`
	Messages []Message `json:"messages"`
}

// Message is one exported message
type Message struct {
	ID           int         `json:"id"`
	Type         string      `json:"type"`
	Date         string      `json:"date"`
	DateUnixtime string      `json:"date_unixtime"`
	FromID       string      `json:"from_id"`
	Text         interface{} `json:"text"` // string or array of strings and entities
}

// Session implements the collector session over a loaded export
type Session struct {
	self    models.Identity
	dialogs []models.Entity
	history map[int64][]models.RawMessage
	logger  zerolog.Logger
}

// Open reads and indexes an export file
func Open(path string, logger zerolog.Logger) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse export JSON: %w", err)
	}

	return New(&export, logger)
}

// New indexes an already decoded export.
// Ownership is decided by the account id, so exports without account information are rejected.
func New(export *Export, logger zerolog.Logger) (*Session, error) {
	if export.PersonalInformation.UserID == 0 {
		return nil, &models.ConfigError{
			Field:  "TELEGRAM_EXPORT_FILE",
			Reason: "has no account information (re-export with \"Account information\" enabled)",
		}
	}

	s := &Session{
		self: models.Identity{
			ID:        export.PersonalInformation.UserID,
			FirstName: export.PersonalInformation.FirstName,
			Username:  export.PersonalInformation.Username,
		},
		history: make(map[int64][]models.RawMessage),
		logger:  logger.With().Str("component", "export").Logger(),
	}

	latest := make(map[int64]time.Time)
	skipped := 0

	for _, chat := range export.Chats.List {
		entity := s.entity(chat)
		if _, dup := s.history[entity.ID]; dup {
			skipped++
			continue
		}

		messages := make([]models.RawMessage, 0, len(chat.Messages))
		for _, msg := range chat.Messages {
			if msg.Type != "" && msg.Type != "message" {
				continue
			}
			date, err := parseDate(msg)
			if err != nil {
				skipped++
				continue
			}
			messages = append(messages, models.RawMessage{
				ID:       msg.ID,
				Date:     date,
				Text:     extractText(msg.Text),
				SenderID: parseSender(msg.FromID),
			})
		}

		// Newest first, the order a live history walk returns
		sort.SliceStable(messages, func(i, j int) bool {
			if messages[i].Date.Equal(messages[j].Date) {
				return messages[i].ID > messages[j].ID
			}
			return messages[i].Date.After(messages[j].Date)
		})
		if len(messages) > 0 {
			latest[entity.ID] = messages[0].Date
		}

		s.history[entity.ID] = messages
		s.dialogs = append(s.dialogs, entity)
	}

	sort.SliceStable(s.dialogs, func(i, j int) bool {
		return latest[s.dialogs[i].ID].After(latest[s.dialogs[j].ID])
	})

	s.logger.Info().
		Int64("user_id", s.self.ID).
		Int("dialogs", len(s.dialogs)).
		Int("skipped", skipped).
		Msg("Export loaded")

	return s, nil
}

// Self returns the exporting account
func (s *Session) Self(ctx context.Context) (models.Identity, error) {
	return s.self, nil
}

// Dialogs returns up to limit dialogs, most recently active first
func (s *Session) Dialogs(ctx context.Context, limit int) ([]models.Entity, error) {
	if limit > 0 && len(s.dialogs) > limit {
		return append([]models.Entity(nil), s.dialogs[:limit]...), nil
	}
	return append([]models.Entity(nil), s.dialogs...), nil
}

// Messages walks the dialog newest first
func (s *Session) Messages(ctx context.Context, entity models.Entity, limit int, fn func(models.RawMessage) bool) error {
	history, ok := s.history[entity.ID]
	if !ok {
		return fmt.Errorf("unknown dialog %d", entity.ID)
	}

	for i, msg := range history {
		if limit > 0 && i >= limit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(msg) {
			return nil
		}
	}
	return nil
}

// entity maps an exported chat onto the platform entity shape
func (s *Session) entity(chat Chat) models.Entity {
	switch chat.Type {
	case TypePersonal, TypeBot:
		first, last := splitName(chat.Name)
		return models.Entity{
			Kind:      models.EntityUser,
			ID:        chat.ID,
			FirstName: first,
			LastName:  last,
			Bot:       chat.Type == TypeBot,
		}
	case TypeSavedMessages:
		return models.Entity{Kind: models.EntityUser, ID: s.self.ID, FirstName: s.self.FirstName}
	case TypePrivateGroup:
		return models.Entity{Kind: models.EntityChat, ID: chat.ID, Title: chat.Name}
	case TypePrivateSupergroup, TypePublicSupergroup:
		return models.Entity{Kind: models.EntityChannel, ID: chat.ID, Title: chat.Name, Megagroup: true}
	case TypePrivateChannel, TypePublicChannel:
		return models.Entity{Kind: models.EntityChannel, ID: chat.ID, Title: chat.Name}
	default:
		return models.Entity{Kind: models.EntityUnknown, ID: chat.ID, Title: chat.Name}
	}
}

// splitName splits an exported display name at the first space
func splitName(name string) (string, string) {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(last)
}

// extractText flattens a string or a list of strings and text entities
func extractText(text interface{}) string {
	switch v := text.(type) {
	case string:
		return v
	case []interface{}:
		var sb strings.Builder
		for _, part := range v {
			switch p := part.(type) {
			case string:
				sb.WriteString(p)
			case map[string]interface{}:
				if txt, ok := p["text"].(string); ok {
					sb.WriteString(txt)
				}
			}
		}
		return sb.String()
	default:
		return ""
	}
}

// parseDate prefers the unix timestamp and falls back to the local date string
func parseDate(msg Message) (time.Time, error) {
	if msg.DateUnixtime != "" {
		timestamp, err := strconv.ParseInt(msg.DateUnixtime, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", msg.DateUnixtime, err)
		}
		return time.Unix(timestamp, 0).UTC(), nil
	}
	if msg.Date == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	return time.ParseInLocation("2006-01-02T15:04:05", msg.Date, time.UTC)
}

// parseSender turns "user123" into 123; non-user senders map to 0
func parseSender(fromID string) int64 {
	rest, ok := strings.CutPrefix(fromID, "user")
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/models"
	"github.com/telegram-work-analyzer/internal/stats"
)

const (
	// MaxMessageLength is the maximum stored length of a message text in characters
	MaxMessageLength = 1000

	DefaultDays               = 30
	DefaultMaxMessagesPerChat = 500
	DefaultMaxChats           = 50
)

// Options controls the collection window and caps
type Options struct {
	Days               int
	MaxMessagesPerChat int
	MaxChats           int
	// Location is used for hour-of-day bucketing, UTC when nil
	Location *time.Location
	// Now overrides the clock (tests)
	Now func() time.Time
}

// Collector gathers recent messages from a chat session
type Collector struct {
	session Session
	opts    Options
	logger  zerolog.Logger
}

// New creates a new collector
func New(session Session, opts Options, logger zerolog.Logger) *Collector {
	if opts.Days <= 0 {
		opts.Days = DefaultDays
	}
	if opts.MaxMessagesPerChat <= 0 {
		opts.MaxMessagesPerChat = DefaultMaxMessagesPerChat
	}
	if opts.MaxChats <= 0 {
		opts.MaxChats = DefaultMaxChats
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Collector{
		session: session,
		opts:    opts,
		logger:  logger.With().Str("component", "collector").Logger(),
	}
}

// Collect walks recent dialogs and returns the collected messages with stats
func (c *Collector) Collect(ctx context.Context) (*models.CollectionResult, error) {
	startTime := time.Now()
	cutoff := c.opts.Now().AddDate(0, 0, -c.opts.Days)

	me, err := c.session.Self(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	c.logger.Info().
		Int64("user_id", me.ID).
		Str("username", me.Username).
		Time("cutoff", cutoff).
		Int("max_chats", c.opts.MaxChats).
		Int("max_messages_per_chat", c.opts.MaxMessagesPerChat).
		Msg("Collecting messages")

	dialogs, err := c.session.Dialogs(ctx, c.opts.MaxChats)
	if err != nil {
		return nil, fmt.Errorf("failed to get dialogs: %w", err)
	}
	if len(dialogs) > c.opts.MaxChats {
		dialogs = dialogs[:c.opts.MaxChats]
	}

	result := models.NewCollectionResult(cutoff, c.opts.Days)
	skipped := 0

	for _, entity := range dialogs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chat := Classify(entity)

		// Bots are not part of work communication
		if chat.Category == models.CategoryBot {
			c.logger.Debug().Str("chat", chat.Name).Msg("Skipping bot dialog")
			continue
		}

		record, err := c.collectChat(ctx, entity, chat, me.ID, cutoff)
		if err != nil {
			// A broken dialog must not abort the whole run
			fetchErr := &models.FetchError{Chat: chat.Name, Err: err}
			if errors.Is(err, context.Canceled) {
				return nil, fetchErr
			}
			c.logger.Warn().
				Err(fetchErr).
				Str("chat", chat.Name).
				Str("type", chat.Category.String()).
				Msg("Failed to fetch dialog, skipping")
			skipped++
			continue
		}

		if len(record.Messages) == 0 {
			c.logger.Debug().Str("chat", chat.Name).Msg("No messages in window")
			continue
		}

		result.AddChat(record)
		for _, msg := range record.Messages {
			if msg.IsMine {
				result.MyMessages = append(result.MyMessages, models.OwnedMessage{
					Message:  msg,
					Chat:     chat.Name,
					Category: chat.Category,
				})
			}
		}

		c.logger.Debug().
			Str("chat", chat.Name).
			Str("type", chat.Category.String()).
			Int("messages", record.TotalMessages).
			Int("my_messages", record.MyMessages).
			Msg("Dialog collected")
	}

	result.Stats = stats.Aggregate(result)

	c.logger.Info().
		Int("chats", len(result.Chats)).
		Int("my_messages", len(result.MyMessages)).
		Int("skipped_dialogs", skipped).
		Dur("duration", time.Since(startTime)).
		Msg("Collection completed")

	return result, nil
}

// collectChat walks one dialog until the cutoff or the per-chat cap
func (c *Collector) collectChat(
	ctx context.Context,
	entity models.Entity,
	chat models.ChatEntity,
	myID int64,
	cutoff time.Time,
) (*models.ChatRecord, error) {
	record := &models.ChatRecord{
		Chat:     chat,
		Messages: []models.Message{},
	}

	seen := 0
	err := c.session.Messages(ctx, entity, c.opts.MaxMessagesPerChat, func(raw models.RawMessage) bool {
		if raw.Date.Before(cutoff) {
			return false
		}
		seen++

		if raw.Text != "" {
			msg := models.Message{
				Date:   raw.Date,
				Text:   truncate(raw.Text, MaxMessageLength),
				IsMine: raw.SenderID == myID,
				Hour:   raw.Date.In(c.opts.Location).Hour(),
			}
			record.Messages = append(record.Messages, msg)
			if msg.IsMine {
				record.MyMessages++
			}
		}

		return seen < c.opts.MaxMessagesPerChat
	})
	if err != nil {
		return nil, err
	}

	record.TotalMessages = len(record.Messages)
	return record, nil
}

// truncate cuts s to at most maxChars characters
func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

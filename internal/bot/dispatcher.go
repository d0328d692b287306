package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/models"
)

const (
	// MaxErrorLength caps the error text of a failure notification
	MaxErrorLength = 500

	// AcknowledgementText closes every delivery
	AcknowledgementText = "✅ Анализ завершён."
)

// Sender is the messaging transport
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error
}

// Pacer spaces consecutive sends
type Pacer interface {
	Wait(ctx context.Context) error
}

// DeliveryResult summarizes one delivery run
type DeliveryResult struct {
	Sent   int
	Failed int
	Errors []*models.DeliveryError
}

// Dispatcher sends report fragments to one chat, strictly in order
type Dispatcher struct {
	sender Sender
	chatID int64
	pacer  Pacer
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher for chatID
func NewDispatcher(sender Sender, chatID int64, pacer Pacer, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		chatID: chatID,
		pacer:  pacer,
		logger: logger.With().Str("component", "dispatcher").Int64("chat_id", chatID).Logger(),
	}
}

// Deliver sends fragments one at a time and then the acknowledgement.
// A failed fragment is logged and skipped. Only cancellation of ctx stops the sequence.
func (d *Dispatcher) Deliver(ctx context.Context, fragments []string) (*DeliveryResult, error) {
	startTime := time.Now()
	result := &DeliveryResult{}

	for i, fragment := range fragments {
		if err := d.pacer.Wait(ctx); err != nil {
			return result, err
		}

		if err := d.safeSend(ctx, fragment, true); err != nil {
			deliveryErr := &models.DeliveryError{Index: i + 1, Err: err}
			result.Failed++
			result.Errors = append(result.Errors, deliveryErr)
			d.logger.Warn().
				Err(deliveryErr).
				Int("fragment", i+1).
				Int("total", len(fragments)).
				Msg("Fragment not delivered, continuing")
			continue
		}
		result.Sent++
	}

	if err := d.pacer.Wait(ctx); err != nil {
		return result, err
	}
	if err := d.safeSend(ctx, AcknowledgementText, false); err != nil {
		d.logger.Warn().Err(err).Msg("Acknowledgement not delivered")
	}

	d.logger.Info().
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Dur("duration", time.Since(startTime)).
		Msg("Delivery completed")

	return result, nil
}

// NotifyError sends a best-effort failure notice. A nil dispatcher means delivery is not configured.
func (d *Dispatcher) NotifyError(ctx context.Context, runErr error) {
	if d == nil || runErr == nil {
		return
	}

	text := fmt.Sprintf("❌ Ошибка анализа:\n%s", truncate(runErr.Error(), MaxErrorLength))
	if err := d.safeSend(ctx, text, false); err != nil {
		d.logger.Error().Err(err).Msg("Failed to send error notification")
	}
}

// truncate cuts s to at most maxChars characters
func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

package collector

import (
	"context"

	"github.com/telegram-work-analyzer/internal/models"
)

// Session is the read-only view of an authenticated chat platform account
type Session interface {
	// Self returns the authenticated user
	Self(ctx context.Context) (models.Identity, error)

	// Dialogs returns up to limit most recent dialogs
	Dialogs(ctx context.Context, limit int) ([]models.Entity, error)

	// Messages walks the dialog history newest first, at most limit messages.
	// The walk stops early when fn returns false.
	Messages(ctx context.Context, entity models.Entity, limit int, fn func(models.RawMessage) bool) error
}

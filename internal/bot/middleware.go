package bot

import (
	"context"
	"fmt"
	"runtime/debug"
)

// safeSend turns a panic inside the sender into an error
func (d *Dispatcher) safeSend(ctx context.Context, text string, markdown bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Panic recovered in sender")
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()

	return d.sender.SendMessage(ctx, d.chatID, text, markdown)
}

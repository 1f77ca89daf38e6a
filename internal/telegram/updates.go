package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"gwi.com/verification-bot/internal/core"
)

// ToInbound converts an update into a core event. Updates that carry no
// message (edits, callbacks, channel posts) are reported as not ok.
func ToInbound(update tgbotapi.Update) (core.Inbound, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return core.Inbound{}, false
	}

	in := core.Inbound{
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
	}
	if msg.IsCommand() {
		in.Command = msg.Command()
	}
	if msg.Document != nil {
		in.Document = &core.Attachment{
			FileID:   msg.Document.FileID,
			FileName: msg.Document.FileName,
		}
	}
	return in, true
}

// DecodeUpdate reads a webhook payload.
func DecodeUpdate(r io.Reader) (tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r).Decode(&update); err != nil {
		return tgbotapi.Update{}, fmt.Errorf("failed to decode update: %w", err)
	}
	return update, nil
}

// Forward pushes the update onto events if it carries a message. It gives up
// when ctx is done.
func Forward(ctx context.Context, update tgbotapi.Update, events chan<- core.Inbound, logger *zap.Logger) {
	in, ok := ToInbound(update)
	if !ok {
		logger.Debug("ignoring update without message", zap.Int("update_id", update.UpdateID))
		return
	}
	select {
	case events <- in:
	case <-ctx.Done():
	}
}

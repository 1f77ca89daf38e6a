package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Chat commands.
const (
	CommandStart    = "start"
	CommandUpload   = "upload"
	CommandGetCodes = "get_codes"
)

// Dispatcher routes inbound chat events to the verification and admin
// services. Each event yields exactly one outbound message.
type Dispatcher struct {
	verification *VerificationService
	admin        *AdminService
	messenger    Messenger
	logger       *zap.Logger
}

func NewDispatcher(verification *VerificationService, admin *AdminService, messenger Messenger, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		verification: verification,
		admin:        admin,
		messenger:    messenger,
		logger:       logger.Named("dispatcher"),
	}
}

// Handle processes one inbound event. The returned error is a transport
// failure; the event itself is never retried.
func (d *Dispatcher) Handle(ctx context.Context, in Inbound) error {
	d.logger.Debug("inbound event",
		zap.Int64("chat_id", in.ChatID),
		zap.String("command", in.Command),
		zap.Bool("document", in.Document != nil),
	)

	switch in.Command {
	case CommandStart:
		d.admin.CancelUpload(in.ChatID)
		return d.reply(ctx, in.ChatID, d.verification.Start(in.ChatID))

	case CommandUpload:
		d.verification.Reset(in.ChatID)
		return d.reply(ctx, in.ChatID, d.admin.BeginUpload(in.ChatID))

	case CommandGetCodes:
		d.verification.Reset(in.ChatID)
		d.admin.CancelUpload(in.ChatID)
		text, document := d.admin.ExportLedger(in.ChatID)
		if document == "" {
			return d.reply(ctx, in.ChatID, text)
		}
		if err := d.messenger.SendDocument(ctx, in.ChatID, document); err != nil {
			d.logger.Error("failed to send document", zap.Int64("chat_id", in.ChatID), zap.Error(err))
			return fmt.Errorf("failed to send document to chat %d: %w", in.ChatID, err)
		}
		return nil
	}

	if text, ok := d.admin.ReceiveUpload(ctx, in); ok {
		return d.reply(ctx, in.ChatID, text)
	}
	if text, ok := d.verification.Continue(in.ChatID, in.Text); ok {
		return d.reply(ctx, in.ChatID, text)
	}
	return d.reply(ctx, in.ChatID, msgSendStart)
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) error {
	if err := d.messenger.SendText(ctx, chatID, text); err != nil {
		d.logger.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// Run handles events from the channel one at a time until it is closed or
// ctx is done.
func (d *Dispatcher) Run(ctx context.Context, events <-chan Inbound) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-events:
			if !ok {
				return
			}
			// Errors are already logged; the loop keeps serving.
			_ = d.Handle(ctx, in)
		}
	}
}

package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"gwi.com/verification-bot/internal/core"
)

const pollTimeout = 60 // seconds

// Poller receives updates through long polling.
type Poller struct {
	client *Client
	logger *zap.Logger
}

func NewPoller(client *Client, logger *zap.Logger) *Poller {
	return &Poller{client: client, logger: logger.Named("poller")}
}

// Run forwards updates to events until ctx is done.
func (p *Poller) Run(ctx context.Context, events chan<- core.Inbound) error {
	if err := p.client.DeleteWebhook(); err != nil {
		return err
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	updates := p.client.bot.GetUpdatesChan(cfg)
	defer p.client.bot.StopReceivingUpdates()

	p.logger.Info("long polling started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("long polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			Forward(ctx, update, events, p.logger)
		}
	}
}

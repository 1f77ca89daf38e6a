package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Client is the Telegram implementation of core.Messenger.
type Client struct {
	bot          *tgbotapi.BotAPI
	fileEndpoint string
	logger       *zap.Logger
}

// NewClient authenticates with the Bot API.
func NewClient(token string, logger *zap.Logger) (*Client, error) {
	return NewClientWithEndpoints(token, tgbotapi.APIEndpoint, tgbotapi.FileEndpoint, http.DefaultClient, logger)
}

// NewClientWithEndpoints is NewClient against a custom Bot API server.
func NewClientWithEndpoints(token, apiEndpoint, fileEndpoint string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, apiEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	logger = logger.Named("telegram")
	logger.Info("authorized on Telegram", zap.String("bot", bot.Self.UserName))
	return &Client{bot: bot, fileEndpoint: fileEndpoint, logger: logger}, nil
}

func (c *Client) Bot() *tgbotapi.BotAPI {
	return c.bot
}

func (c *Client) SendText(_ context.Context, chatID int64, text string) error {
	if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	return nil
}

func (c *Client) SendDocument(_ context.Context, chatID int64, path string) error {
	if _, err := c.bot.Send(tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))); err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}
	return nil
}

// FetchDocument downloads the contents of an uploaded file.
func (c *Client) FetchDocument(ctx context.Context, fileID string) ([]byte, error) {
	file, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("getFile: %w", err)
	}

	url := fmt.Sprintf(c.fileEndpoint, c.bot.Token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := c.bot.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}
	return data, nil
}

// SetWebhook switches delivery to the given URL. Telegram echoes secret in
// the X-Telegram-Bot-Api-Secret-Token header of every webhook call.
func (c *Client) SetWebhook(url, secret string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	if _, err := c.bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("setWebhook: %w", err)
	}
	c.logger.Info("webhook registered", zap.String("url", url))
	return nil
}

// DeleteWebhook switches delivery back to long polling.
func (c *Client) DeleteWebhook() error {
	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("deleteWebhook: %w", err)
	}
	return nil
}

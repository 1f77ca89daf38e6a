package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	ErrInvalidToken     = errors.New("invalid Telegram bot token")
	ErrInvalidAdminID   = errors.New("invalid ADMIN_ID, expected a numeric Telegram ID")
	ErrWebhookNeedsHTTP = errors.New("WEBHOOK_URL requires HTTP_PORT")
)

type Config struct {
	TelegramBotToken string
	AdminID          int64
	ReferenceDir     string
	LedgerPath       string
	ExportPath       string
	LogLevel         string
	HTTPPort         string
	WebhookURL       string
	WebhookSecret    string
}

// Load reads the optional .env file and the process environment.
func Load() (*Config, error) {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		ReferenceDir:     getEnv("REFERENCE_DIR", "csv_files"),
		LedgerPath:       getEnv("LEDGER_PATH", "user_codes.xlsx"),
		LogLevel:         strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		HTTPPort:         getEnv("HTTP_PORT", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		WebhookSecret:    getEnv("WEBHOOK_SECRET", ""),
	}
	cfg.ExportPath = getEnv("EXPORT_PATH", cfg.LedgerPath)

	if cfg.TelegramBotToken == "" || !strings.Contains(cfg.TelegramBotToken, ":") {
		return nil, fmt.Errorf("%w: check TELEGRAM_BOT_TOKEN in your .env file", ErrInvalidToken)
	}

	adminID, err := parseAdminID(getEnv("ADMIN_ID", ""))
	if err != nil {
		return nil, err
	}
	cfg.AdminID = adminID

	if cfg.WebhookURL != "" && cfg.HTTPPort == "" {
		return nil, ErrWebhookNeedsHTTP
	}
	return cfg, nil
}

func parseAdminID(raw string) (int64, error) {
	if raw == "" {
		return 0, ErrInvalidAdminID
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAdminID, raw)
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAdminID, err)
	}
	return id, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

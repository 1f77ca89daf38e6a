package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:ABC-DEF")
	t.Setenv("ADMIN_ID", "42")
}

func TestFromEnv_Defaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.AdminID)
	assert.Equal(t, "csv_files", cfg.ReferenceDir)
	assert.Equal(t, "user_codes.xlsx", cfg.LedgerPath)
	assert.Equal(t, cfg.LedgerPath, cfg.ExportPath)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Empty(t, cfg.HTTPPort)
}

func TestFromEnv_ExportPathOverride(t *testing.T) {
	setValidEnv(t)
	t.Setenv("LEDGER_PATH", "ledger.xlsx")
	t.Setenv("EXPORT_PATH", "out/export.xlsx")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "ledger.xlsx", cfg.LedgerPath)
	assert.Equal(t, "out/export.xlsx", cfg.ExportPath)
}

func TestFromEnv_InvalidToken(t *testing.T) {
	for _, token := range []string{"", "no-colon-here"} {
		t.Run(token, func(t *testing.T) {
			setValidEnv(t)
			t.Setenv("TELEGRAM_BOT_TOKEN", token)

			_, err := FromEnv()
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestFromEnv_InvalidAdminID(t *testing.T) {
	for _, id := range []string{"", "abc", "-5", "12a", "99999999999999999999"} {
		t.Run(id, func(t *testing.T) {
			setValidEnv(t)
			t.Setenv("ADMIN_ID", id)

			_, err := FromEnv()
			assert.ErrorIs(t, err, ErrInvalidAdminID)
		})
	}
}

func TestFromEnv_WebhookRequiresHTTPPort(t *testing.T) {
	setValidEnv(t)
	t.Setenv("WEBHOOK_URL", "https://example.org/api/telegram/webhook")

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrWebhookNeedsHTTP)

	t.Setenv("HTTP_PORT", "8080")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
}

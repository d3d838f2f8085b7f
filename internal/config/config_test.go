package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LEDGER_BACKEND", "SHEET_API_URL", "CORS_ORIGINS", "PDF_ENABLED", "SMTP_PORT", "SUBMIT_RATE_LIMIT", "COMPANY_SITES"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.LedgerBackend)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.True(t, cfg.PDFEnabled)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 10, cfg.SubmitRateLimit)
	assert.Empty(t, cfg.CompanySites)
}

func TestFromEnv_Values(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "Sheet")
	t.Setenv("SHEET_API_URL", "https://script.example.com/exec")
	t.Setenv("COMPANY_SITES", "本社: 東京都, 工場: 静岡県 ,")
	t.Setenv("ORDER_NOTIFY_TO", "achat@example.com")
	t.Setenv("SMTP_USERNAME", "bot@example.com")
	t.Setenv("SMTP_FROM", "")
	t.Setenv("SMTP_PORT", "abc")
	t.Setenv("PDF_ENABLED", "false")

	cfg := FromEnv()

	assert.Equal(t, BackendSheet, cfg.LedgerBackend)
	assert.Equal(t, []string{"本社: 東京都", "工場: 静岡県"}, cfg.CompanySites)
	assert.Equal(t, []string{"achat@example.com"}, cfg.OrderNotifyTo)
	assert.Equal(t, "bot@example.com", cfg.SMTPFrom)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.False(t, cfg.PDFEnabled)
}

func TestFromEnv_BackendFallback(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "sheet")
	t.Setenv("SHEET_API_URL", "")
	assert.Equal(t, BackendMemory, FromEnv().LedgerBackend)

	t.Setenv("LEDGER_BACKEND", "mongo")
	assert.Equal(t, BackendMemory, FromEnv().LedgerBackend)
}

package internal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/chatquota")
	t.Setenv("ENV", "")
	t.Setenv("STORAGE_PROVIDER", "")
	t.Setenv("PAYMENT_SUCCESS_RATE", "")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.RenewalInterval)
	assert.Equal(t, 24*time.Hour, cfg.UsageResetInterval)
	assert.InDelta(t, 0.9, cfg.PaymentSuccessRate, 1e-9)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "local", cfg.StorageProvider)
}

func TestNewConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := NewConfig()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestNewConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unknown storage", "STORAGE_PROVIDER", "s3", "STORAGE_PROVIDER"},
		{"r2 without account", "STORAGE_PROVIDER", "r2", "R2_ACCOUNT_ID"},
		{"real ai provider", "AI_PROVIDER", "anthropic", "AI_PROVIDER"},
		{"payment rate above one", "PAYMENT_SUCCESS_RATE", "1.5", "PAYMENT_SUCCESS_RATE"},
		{"negative rate limit", "CHAT_RATE_LIMIT", "-1", "CHAT_RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/chatquota")
			t.Setenv("R2_ACCOUNT_ID", "")
			t.Setenv(tt.key, tt.value)

			_, err := NewConfig()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, getEnvList("CORS_ALLOWED_ORIGINS", nil))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("CHANNEL_ID", "-1001234567890")
	t.Setenv("ADMIN_ID", "424242")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "123:abc", cfg.BotToken)
	require.Equal(t, int64(-1001234567890), cfg.ChannelID)
	require.Equal(t, int64(424242), cfg.AdminID)
	require.Equal(t, "https://api.telegram.org", cfg.TelegramAPIURL)
	require.Equal(t, UpdateModePolling, cfg.UpdateMode)
	require.Equal(t, 30*time.Second, cfg.PollTimeout)
	require.Equal(t, "bot_data.db", cfg.DatabaseFile)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 15*time.Minute, cfg.AdminSessionTTL)
	require.Equal(t, time.Minute, cfg.HousekeepingInterval)

	rl := cfg.InviteRateLimit()
	require.Equal(t, 3, rl.RequestsPerWindow)
	require.Equal(t, time.Minute, rl.Window)
	require.False(t, rl.Disabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("UPDATE_MODE", "webhook")
	t.Setenv("WEBHOOK_SECRET", "hook")
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_SESSION_TTL", "2m")
	t.Setenv("INVITE_RATE_PER_MINUTE", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, UpdateModeWebhook, cfg.UpdateMode)
	require.Equal(t, "hook", cfg.WebhookSecret)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 2*time.Minute, cfg.AdminSessionTTL)
	require.True(t, cfg.InviteRateLimit().Disabled())
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("CHANNEL_ID", "-100")
		t.Setenv("ADMIN_ID", "1")

		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("bad channel id", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CHANNEL_ID", "channel")

		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("unknown mode", func(t *testing.T) {
		setRequired(t)
		t.Setenv("UPDATE_MODE", "carrier-pigeon")

		_, err := LoadConfig()
		require.ErrorContains(t, err, "UPDATE_MODE")
	})

	t.Run("webhook without secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("UPDATE_MODE", "webhook")
		t.Setenv("WEBHOOK_SECRET", "")

		_, err := LoadConfig()
		require.ErrorContains(t, err, "WEBHOOK_SECRET")
	})
}

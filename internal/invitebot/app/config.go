package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/invitebot/pkg/ratelimit"
)

const (
	UpdateModePolling = "polling"
	UpdateModeWebhook = "webhook"
)

type Config struct {
	BotToken       string `env:"BOT_TOKEN,required,notEmpty"`
	ChannelID      int64  `env:"CHANNEL_ID,required"`
	AdminID        int64  `env:"ADMIN_ID,required"`
	TelegramAPIURL string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`

	UpdateMode    string        `env:"UPDATE_MODE"    envDefault:"polling"` // polling or webhook
	WebhookSecret string        `env:"WEBHOOK_SECRET"`                      // checked against X-Telegram-Bot-Api-Secret-Token
	PollTimeout   time.Duration `env:"POLL_TIMEOUT"   envDefault:"30s"`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"bot_data.db"`

	Env       string `env:"ENV"        envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                 int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1m"`
	AdminSessionTTL      time.Duration `env:"ADMIN_SESSION_TTL"     envDefault:"15m"`

	// Invite issuance throttle per requesting user. Zero rate disables it.
	InviteRatePerMinute int `env:"INVITE_RATE_PER_MINUTE" envDefault:"3"`
	InviteRateBurst     int `env:"INVITE_RATE_BURST"      envDefault:"2"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.UpdateMode {
	case UpdateModePolling, UpdateModeWebhook:
	default:
		errs = append(errs, fmt.Errorf("UPDATE_MODE must be %q or %q, got %q", UpdateModePolling, UpdateModeWebhook, c.UpdateMode))
	}
	if c.UpdateMode == UpdateModeWebhook && c.WebhookSecret == "" {
		errs = append(errs, errors.New("WEBHOOK_SECRET is required in webhook mode"))
	}
	if c.ChannelID == 0 {
		errs = append(errs, errors.New("CHANNEL_ID must be set"))
	}
	if c.AdminID == 0 {
		errs = append(errs, errors.New("ADMIN_ID must be set"))
	}
	if c.InviteRatePerMinute < 0 || c.InviteRateBurst < 0 {
		errs = append(errs, errors.New("invite rate settings must not be negative"))
	}

	return errors.Join(errs...)
}

// InviteRateLimit converts the throttle settings for pkg/ratelimit.
func (c Config) InviteRateLimit() ratelimit.Config {
	return ratelimit.Config{
		RequestsPerWindow: c.InviteRatePerMinute,
		Window:            time.Minute,
		Burst:             c.InviteRateBurst,
	}
}

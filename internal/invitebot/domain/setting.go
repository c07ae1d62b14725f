package domain

type SettingKey string

const (
	SettingWelcomeMessage SettingKey = "welcome_msg"
	SettingInfoMessage    SettingKey = "info_msg"
	SettingInviteDays     SettingKey = "invite_days"
)

const (
	DefaultInviteDays = 30
	// MaxInviteDays caps the validity period at roughly ten years.
	MaxInviteDays = 3650
)

// SettingKeys lists every recognised key in display order.
var SettingKeys = []SettingKey{
	SettingWelcomeMessage,
	SettingInfoMessage,
	SettingInviteDays,
}

// DefaultSettings returns the values installed when a key is missing.
func DefaultSettings() map[SettingKey]string {
	return map[SettingKey]string{
		SettingWelcomeMessage: "Welcome! This bot manages access to a private Telegram channel.",
		SettingInfoMessage:    "This bot creates and manages invite links for a private channel.",
		SettingInviteDays:     "30",
	}
}

// Valid reports whether k is one of the recognised keys.
func (k SettingKey) Valid() bool {
	for _, known := range SettingKeys {
		if k == known {
			return true
		}
	}
	return false
}

func (k SettingKey) String() string { return string(k) }

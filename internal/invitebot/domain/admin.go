package domain

// AdminInputState marks which setting is waiting for free text in a
// conversation. The zero value is AdminIdle.
type AdminInputState int

const (
	AdminIdle AdminInputState = iota
	AdminAwaitingWelcome
	AdminAwaitingInfo
	AdminAwaitingInviteDays
)

func (s AdminInputState) String() string {
	switch s {
	case AdminAwaitingWelcome:
		return "awaiting_welcome"
	case AdminAwaitingInfo:
		return "awaiting_info"
	case AdminAwaitingInviteDays:
		return "awaiting_invite_days"
	default:
		return "idle"
	}
}

// AwaitingStateFor maps a setting key to the state that collects it.
func AwaitingStateFor(key SettingKey) (AdminInputState, bool) {
	switch key {
	case SettingWelcomeMessage:
		return AdminAwaitingWelcome, true
	case SettingInfoMessage:
		return AdminAwaitingInfo, true
	case SettingInviteDays:
		return AdminAwaitingInviteDays, true
	default:
		return AdminIdle, false
	}
}

// Field returns the setting key collected in state s.
func (s AdminInputState) Field() (SettingKey, bool) {
	switch s {
	case AdminAwaitingWelcome:
		return SettingWelcomeMessage, true
	case AdminAwaitingInfo:
		return SettingInfoMessage, true
	case AdminAwaitingInviteDays:
		return SettingInviteDays, true
	default:
		return "", false
	}
}

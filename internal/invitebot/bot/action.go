package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
)

// ErrUnknownAction is returned for callback data no button produces.
var ErrUnknownAction = errors.New("unknown action")

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionStart
	ActionCreateInvite
	ActionListInvites
	ActionInfo
	ActionAdminMenu
	ActionEditSetting
	ActionBackToMenu
	ActionMarkUsed
	ActionText
)

func (k ActionKind) String() string {
	switch k {
	case ActionStart:
		return "start"
	case ActionCreateInvite:
		return "create_invite"
	case ActionListInvites:
		return "list_invites"
	case ActionInfo:
		return "info"
	case ActionAdminMenu:
		return "admin_menu"
	case ActionEditSetting:
		return "edit_setting"
	case ActionBackToMenu:
		return "back_to_menu"
	case ActionMarkUsed:
		return "mark_used"
	case ActionText:
		return "text"
	default:
		return "none"
	}
}

// Action is a decoded user intent. Only the field matching Kind is set.
type Action struct {
	Kind ActionKind

	Offset int               // ActionListInvites
	Field  domain.SettingKey // ActionEditSetting
	Code   string            // ActionMarkUsed
	Text   string            // ActionText
}

const (
	cbCreateInvite = "create_invite"
	cbListInvites  = "list_invites_"
	cbInfo         = "info"
	cbAdminMenu    = "admin_menu"
	cbBackToMenu   = "back_to_menu"

	// The suffix of the edit callbacks is not the setting key.
	cbEditWelcome    = "edit_welcome"
	cbEditInfo       = "edit_info"
	cbEditInviteDays = "edit_invite_days"

	cmdStart = "/start"
	cmdUsed  = "/used"
)

// CallbackData encodes a for an inline button. Actions that only come from
// typed messages encode to "".
func (a Action) CallbackData() string {
	switch a.Kind {
	case ActionCreateInvite:
		return cbCreateInvite
	case ActionListInvites:
		return cbListInvites + strconv.Itoa(max(a.Offset, 0))
	case ActionInfo:
		return cbInfo
	case ActionAdminMenu:
		return cbAdminMenu
	case ActionEditSetting:
		switch a.Field {
		case domain.SettingWelcomeMessage:
			return cbEditWelcome
		case domain.SettingInfoMessage:
			return cbEditInfo
		case domain.SettingInviteDays:
			return cbEditInviteDays
		}
		return ""
	case ActionBackToMenu:
		return cbBackToMenu
	default:
		return ""
	}
}

// ParseCallback decodes inline button data.
func ParseCallback(data string) (Action, error) {
	switch data {
	case cbCreateInvite:
		return Action{Kind: ActionCreateInvite}, nil
	case cbInfo:
		return Action{Kind: ActionInfo}, nil
	case cbAdminMenu:
		return Action{Kind: ActionAdminMenu}, nil
	case cbBackToMenu:
		return Action{Kind: ActionBackToMenu}, nil
	case cbEditWelcome:
		return Action{Kind: ActionEditSetting, Field: domain.SettingWelcomeMessage}, nil
	case cbEditInfo:
		return Action{Kind: ActionEditSetting, Field: domain.SettingInfoMessage}, nil
	case cbEditInviteDays:
		return Action{Kind: ActionEditSetting, Field: domain.SettingInviteDays}, nil
	}

	if rest, ok := strings.CutPrefix(data, cbListInvites); ok {
		offset, err := strconv.Atoi(rest)
		if err != nil || offset < 0 {
			return Action{}, fmt.Errorf("%w: bad offset in %q", ErrUnknownAction, data)
		}
		return Action{Kind: ActionListInvites, Offset: offset}, nil
	}

	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}

// ParseMessage decodes a typed message. Anything that is not a known
// command is free text.
func ParseMessage(text string) Action {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Action{Kind: ActionText, Text: text}
	}

	// Commands may be addressed as /start@SomeBot in groups.
	cmd, _, _ := strings.Cut(fields[0], "@")
	switch cmd {
	case cmdStart:
		return Action{Kind: ActionStart}
	case cmdUsed:
		var code string
		if len(fields) > 1 {
			code = fields[1]
		}
		return Action{Kind: ActionMarkUsed, Code: code}
	}

	return Action{Kind: ActionText, Text: text}
}

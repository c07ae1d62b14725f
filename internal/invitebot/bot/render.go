package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/service"
	"github.com/aussiebroadwan/invitebot/pkg/telegram"
)

const timeLayout = "2006-01-02 15:04"

const (
	textAccessDenied   = "Access denied!"
	textInvalidNumber  = "Error: Please enter a valid number!"
	textEmptyValue     = "Error: The message must not be empty!"
	textNoInvites      = "No invites found."
	textLinkFailed     = "Error: Could not create an invite link. Make sure the bot is a channel admin allowed to invite users."
	textMisconfigured  = "Error: The bot is not configured correctly. Please contact the administrator."
	textSaveFailed     = "Error: The invite could not be saved. Please try again."
	textThrottled      = "Please wait a moment before requesting another invite."
	textInviteNotFound = "Invite not found."
	textUsedUsage      = "Usage: /used CODE"
	textGenericError   = "Error: Something went wrong. Please try again."
)

func button(text string, a Action) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: text, CallbackData: a.CallbackData()}
}

func keyboard(rows ...telegram.InlineKeyboardButton) *telegram.InlineKeyboardMarkup {
	kb := &telegram.InlineKeyboardMarkup{InlineKeyboard: make([][]telegram.InlineKeyboardButton, 0, len(rows))}
	for _, b := range rows {
		kb.InlineKeyboard = append(kb.InlineKeyboard, []telegram.InlineKeyboardButton{b})
	}
	return kb
}

func mainMenu() *telegram.InlineKeyboardMarkup {
	return keyboard(
		button("Create Invite", Action{Kind: ActionCreateInvite}),
		button("List Invites", Action{Kind: ActionListInvites}),
		button("Info", Action{Kind: ActionInfo}),
		button("Admin Panel", Action{Kind: ActionAdminMenu}),
	)
}

func backToMenu() *telegram.InlineKeyboardMarkup {
	return keyboard(button("Back", Action{Kind: ActionBackToMenu}))
}

func backToAdmin() *telegram.InlineKeyboardMarkup {
	return keyboard(button("Back to Admin", Action{Kind: ActionAdminMenu}))
}

func adminMenu() *telegram.InlineKeyboardMarkup {
	return keyboard(
		button("Edit Welcome", Action{Kind: ActionEditSetting, Field: domain.SettingWelcomeMessage}),
		button("Edit Info", Action{Kind: ActionEditSetting, Field: domain.SettingInfoMessage}),
		button("Edit Invite Days", Action{Kind: ActionEditSetting, Field: domain.SettingInviteDays}),
		button("Back", Action{Kind: ActionBackToMenu}),
	)
}

func adminPanelText(issued int64) string {
	return fmt.Sprintf("Admin Panel:\nInvites issued: %d", issued)
}

func issuedText(issued service.Issued, loc *time.Location) string {
	return fmt.Sprintf("Your invite:\n%s\nValid until: %s", issued.Link, issued.ExpiresAt.In(loc).Format(timeLayout))
}

func editPrompt(field domain.SettingKey) string {
	switch field {
	case domain.SettingWelcomeMessage:
		return "Enter new welcome message:"
	case domain.SettingInfoMessage:
		return "Enter new info text:"
	case domain.SettingInviteDays:
		return "Enter new invite expiration days (number):"
	default:
		return ""
	}
}

func editConfirmation(res service.EditResult) string {
	switch res.Field {
	case domain.SettingWelcomeMessage:
		return "Welcome message updated!"
	case domain.SettingInfoMessage:
		return "Info updated!"
	case domain.SettingInviteDays:
		return fmt.Sprintf("Invite expiration updated to %s days!", res.Value)
	default:
		return "Setting updated!"
	}
}

// inviteListText renders one listing page. Status is computed against the
// page's clock.
func inviteListText(page service.InvitePage, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("Invite List:\n\n")
	for _, inv := range page.Invites {
		fmt.Fprintf(&b, "Code: %s | Status: %s\nValid until: %s\n%s\n\n",
			inv.Code,
			inv.Status(page.Now),
			inv.ExpiresAt.In(loc).Format(timeLayout),
			inv.Link,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func inviteListKeyboard(page service.InvitePage) *telegram.InlineKeyboardMarkup {
	if page.HasMore {
		return keyboard(
			button("Show More", Action{Kind: ActionListInvites, Offset: page.NextOffset}),
			button("Back", Action{Kind: ActionBackToMenu}),
		)
	}
	return backToMenu()
}

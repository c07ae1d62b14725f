package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
	"github.com/stretchr/testify/require"
)

func TestStartShowsWelcomeAndMenu(t *testing.T) {
	b := newTestBot(t)

	require.NoError(t, b.dispatcher.HandleUpdate(context.Background(), textUpdate(userID, "/start")))

	msg := b.messenger.last(t)
	require.Equal(t, chatID, msg.ChatID)
	require.Equal(t, domain.DefaultSettings()[domain.SettingWelcomeMessage], msg.Text)
	require.NotNil(t, msg.ReplyMarkup)
	require.Len(t, msg.ReplyMarkup.InlineKeyboard, 4)
	require.Equal(t, "list_invites_0", msg.ReplyMarkup.InlineKeyboard[1][0].CallbackData)
}

func TestCreateInviteReplyAndAnswer(t *testing.T) {
	b := newTestBot(t)

	require.NoError(t, b.dispatcher.HandleUpdate(context.Background(), callbackUpdate(userID, "create_invite")))

	want := "Your invite:\nhttps://t.me/+fake1\nValid until: " + testNow.AddDate(0, 0, 30).Format("2006-01-02 15:04")
	require.Equal(t, want, b.messenger.lastText(t))
	require.Equal(t, []string{"cb-1"}, b.messenger.answered)

	count, err := b.invites.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestCreateInviteWithoutPermission(t *testing.T) {
	b := newTestBot(t)
	b.links.permitted = false

	require.NoError(t, b.dispatcher.HandleUpdate(context.Background(), callbackUpdate(userID, "create_invite")))
	require.Equal(t, textLinkFailed, b.messenger.lastText(t))
}

func TestListInvitesPagination(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(userID, "list_invites_0")))
	require.Equal(t, textNoInvites, b.messenger.lastText(t))

	for i := range 12 {
		require.NoError(t, b.invites.Store.Invites().CreateInvite(ctx, &domain.Invite{
			Code:        fmt.Sprintf("code%04d", i),
			Link:        fmt.Sprintf("https://t.me/+l%d", i),
			CreatedAt:   testNow.Add(time.Duration(i) * time.Minute),
			ExpiresAt:   testNow.Add(time.Duration(i-6) * time.Hour),
			RequesterID: userID,
		}))
	}
	require.NoError(t, b.invites.MarkUsed(ctx, "code0011"))

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(userID, "list_invites_0")))
	first := b.messenger.last(t)
	require.True(t, strings.HasPrefix(first.Text, "Invite List:\n\nCode: code0011 | Status: Used\n"))
	require.Contains(t, first.Text, "Code: code0010 | Status: Active")
	require.Contains(t, first.Text, "Code: code0002 | Status: Expired")
	require.Equal(t, 10, strings.Count(first.Text, "Code: "))
	require.Equal(t, "list_invites_10", first.ReplyMarkup.InlineKeyboard[0][0].CallbackData)
	require.True(t, first.LinkPreviewOptions.IsDisabled)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(userID, "list_invites_10")))
	second := b.messenger.last(t)
	require.Equal(t, 2, strings.Count(second.Text, "Code: "))
	require.Len(t, second.ReplyMarkup.InlineKeyboard, 1)
	require.Equal(t, "back_to_menu", second.ReplyMarkup.InlineKeyboard[0][0].CallbackData)
}

func TestInfoAndBackToMenu(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(userID, "info")))
	require.Equal(t, domain.DefaultSettings()[domain.SettingInfoMessage], b.messenger.lastText(t))

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(userID, "back_to_menu")))
	require.Len(t, b.messenger.edited, 1)
	require.Equal(t, int64(20), b.messenger.edited[0].MessageID)
	require.Equal(t, domain.DefaultSettings()[domain.SettingWelcomeMessage], b.messenger.edited[0].Text)
}

func TestBackToMenuFallsBackToSend(t *testing.T) {
	b := newTestBot(t)
	b.messenger.editErr = errors.New("message can't be edited")

	require.NoError(t, b.dispatcher.HandleUpdate(context.Background(), callbackUpdate(userID, "back_to_menu")))
	require.Equal(t, domain.DefaultSettings()[domain.SettingWelcomeMessage], b.messenger.lastText(t))
}

func TestAdminPanelAccess(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(userID, "admin_menu")))
	require.Equal(t, textAccessDenied, b.messenger.lastText(t))

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(adminID, "admin_menu")))
	require.Equal(t, "Admin Panel:\nInvites issued: 0", b.messenger.lastText(t))
}

func TestAdminEditInviteDaysConversation(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(adminID, "edit_invite_days")))
	require.Equal(t, "Enter new invite expiration days (number):", b.messenger.lastText(t))

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "45")))
	require.Equal(t, "Invite expiration updated to 45 days!", b.messenger.lastText(t))

	days, err := b.settings.InviteDays(ctx)
	require.NoError(t, err)
	require.Equal(t, 45, days)

	// Back to idle: further text is ignored.
	sent := len(b.messenger.sent)
	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "60")))
	require.Len(t, b.messenger.sent, sent)
}

func TestAdminEditRejectsBadNumber(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(adminID, "edit_invite_days")))
	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "-5")))
	require.Equal(t, textInvalidNumber, b.messenger.lastText(t))

	days, err := b.settings.InviteDays(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.DefaultInviteDays, days)
}

func TestAdminEditIgnoresNonTextAndRejectsBlank(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t)
	welcome := domain.DefaultSettings()[domain.SettingWelcomeMessage]

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(adminID, "edit_welcome")))
	sent := len(b.messenger.sent)

	// A photo or sticker arrives with no text and leaves the edit pending.
	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "")))
	require.Len(t, b.messenger.sent, sent)

	got, err := b.settings.Get(ctx, domain.SettingWelcomeMessage)
	require.NoError(t, err)
	require.Equal(t, welcome, got)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "   ")))
	require.Equal(t, textEmptyValue, b.messenger.lastText(t))

	got, err = b.settings.Get(ctx, domain.SettingWelcomeMessage)
	require.NoError(t, err)
	require.Equal(t, welcome, got)

	// The rejected edit is over.
	sent = len(b.messenger.sent)
	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "Hello")))
	require.Len(t, b.messenger.sent, sent)
}

func TestAdminEditWelcomeConversation(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(adminID, "edit_welcome")))
	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "Hi there")))
	require.Equal(t, "Welcome message updated!", b.messenger.lastText(t))
	require.Equal(t, "admin_menu", b.messenger.last(t).ReplyMarkup.InlineKeyboard[0][0].CallbackData)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(userID, "/start")))
	require.Equal(t, "Hi there", b.messenger.lastText(t))
}

func TestNonAdminCannotEdit(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, callbackUpdate(userID, "edit_info")))
	require.Equal(t, textAccessDenied, b.messenger.lastText(t))
	require.NotContains(t, b.messenger.lastText(t), "info")
}

func TestMarkUsedCommand(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t)

	issued, err := b.invites.Issue(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(userID, "/used "+issued.Code)))
	require.Equal(t, textAccessDenied, b.messenger.lastText(t))

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "/used")))
	require.Equal(t, textUsedUsage, b.messenger.lastText(t))

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "/used missing1")))
	require.Equal(t, textInviteNotFound, b.messenger.lastText(t))

	require.NoError(t, b.dispatcher.HandleUpdate(ctx, textUpdate(adminID, "/used "+issued.Code)))
	require.Equal(t, "Invite "+issued.Code+" marked as used.", b.messenger.lastText(t))

	inv, err := b.invites.Store.Invites().GetInviteByCode(ctx, issued.Code)
	require.NoError(t, err)
	require.True(t, inv.Used)
}

func TestUnknownCallbackIsAnsweredAndIgnored(t *testing.T) {
	b := newTestBot(t)

	require.NoError(t, b.dispatcher.HandleUpdate(context.Background(), callbackUpdate(userID, "bogus")))
	require.Empty(t, b.messenger.sent)
	require.Equal(t, []string{"cb-1"}, b.messenger.answered)
}

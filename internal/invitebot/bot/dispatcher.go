package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/metrics"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/service"
	"github.com/aussiebroadwan/invitebot/pkg/slogx"
	"github.com/aussiebroadwan/invitebot/pkg/telegram"
)

// Messenger sends replies back to the chat platform.
type Messenger interface {
	SendMessage(ctx context.Context, p telegram.SendMessageParams) (telegram.Message, error)
	EditMessageText(ctx context.Context, p telegram.EditMessageTextParams) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
}

// UpdateHandler consumes updates from either the poller or the webhook.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd telegram.Update) error
}

// Dispatcher turns updates into service calls and replies. It holds no
// per-conversation state of its own; the admin edit state lives in Admin.
type Dispatcher struct {
	Messenger Messenger
	Settings  *service.SettingsService
	Invites   *service.InviteService
	Admin     *service.AdminFlow

	// Location used to print expiry times. Nil prints UTC.
	Location *time.Location
}

// chatRef identifies where a reply goes and who asked.
type chatRef struct {
	chatID    int64
	messageID int64
	userID    int64
}

func (d *Dispatcher) HandleUpdate(ctx context.Context, upd telegram.Update) error {
	start := time.Now()

	ctx = slogx.With(ctx,
		"update_id", upd.UpdateID,
		"corr_id", slogx.NewCorrelationID(),
	)

	var (
		action Action
		err    error
	)
	switch {
	case upd.CallbackQuery != nil:
		action, err = d.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		action, err = d.handleMessage(ctx, upd.Message)
	default:
		slogx.FromContext(ctx).Debug("ignoring unsupported update")
	}

	kind := action.Kind.String()
	metrics.UpdatesHandled.WithLabelValues(kind).Inc()
	metrics.UpdateDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	return err
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *telegram.Message) (Action, error) {
	// Photos, stickers and service messages carry no text.
	if msg.From == nil || msg.Text == "" {
		return Action{}, nil
	}
	ref := chatRef{chatID: msg.Chat.ID, messageID: msg.MessageID, userID: msg.From.ID}
	ctx = slogx.With(ctx, "chat_id", ref.chatID, "user_id", ref.userID)

	action := ParseMessage(msg.Text)
	return action, d.dispatch(ctx, ref, action, false)
}

func (d *Dispatcher) handleCallback(ctx context.Context, q *telegram.CallbackQuery) (Action, error) {
	log := slogx.FromContext(ctx)

	defer func() {
		if err := d.Messenger.AnswerCallbackQuery(ctx, q.ID, ""); err != nil {
			log.Warn("failed to answer callback query", "error", err)
		}
	}()

	if q.Message == nil {
		log.Debug("callback without message")
		return Action{}, nil
	}
	ref := chatRef{chatID: q.Message.Chat.ID, messageID: q.Message.MessageID, userID: q.From.ID}
	ctx = slogx.With(ctx, "chat_id", ref.chatID, "user_id", ref.userID)

	action, err := ParseCallback(q.Data)
	if err != nil {
		slogx.FromContext(ctx).Warn("ignoring callback", "data", q.Data, "error", err)
		return Action{}, nil
	}
	return action, d.dispatch(ctx, ref, action, true)
}

func (d *Dispatcher) dispatch(ctx context.Context, ref chatRef, a Action, fromButton bool) error {
	switch a.Kind {
	case ActionStart:
		return d.showMenu(ctx, ref, false)
	case ActionBackToMenu:
		return d.showMenu(ctx, ref, fromButton)
	case ActionCreateInvite:
		return d.createInvite(ctx, ref)
	case ActionListInvites:
		return d.listInvites(ctx, ref, a.Offset)
	case ActionInfo:
		return d.showInfo(ctx, ref)
	case ActionAdminMenu:
		return d.showAdminMenu(ctx, ref)
	case ActionEditSetting:
		return d.beginEdit(ctx, ref, a.Field)
	case ActionMarkUsed:
		return d.markUsed(ctx, ref, a.Code)
	case ActionText:
		return d.submitText(ctx, ref, a.Text)
	default:
		return nil
	}
}

func (d *Dispatcher) showMenu(ctx context.Context, ref chatRef, edit bool) error {
	welcome, err := d.Settings.Get(ctx, domain.SettingWelcomeMessage)
	if err != nil {
		return d.replyError(ctx, ref, err)
	}

	if edit {
		err := d.Messenger.EditMessageText(ctx, telegram.EditMessageTextParams{
			ChatID:      ref.chatID,
			MessageID:   ref.messageID,
			Text:        welcome,
			ReplyMarkup: mainMenu(),
		})
		if err == nil {
			return nil
		}
		// The message may be too old to edit; fall back to a fresh one.
		slogx.FromContext(ctx).Debug("edit failed, sending menu instead", "error", err)
	}
	return d.send(ctx, ref, welcome, mainMenu())
}

func (d *Dispatcher) createInvite(ctx context.Context, ref chatRef) error {
	issued, err := d.Invites.Issue(ctx, ref.userID)
	if err != nil {
		return d.replyError(ctx, ref, err)
	}
	return d.send(ctx, ref, issuedText(issued, d.location()), backToMenu())
}

func (d *Dispatcher) listInvites(ctx context.Context, ref chatRef, offset int) error {
	page, err := d.Invites.ListPage(ctx, offset)
	if err != nil {
		return d.replyError(ctx, ref, err)
	}
	if len(page.Invites) == 0 {
		return d.send(ctx, ref, textNoInvites, backToMenu())
	}
	return d.send(ctx, ref, inviteListText(page, d.location()), inviteListKeyboard(page))
}

func (d *Dispatcher) showInfo(ctx context.Context, ref chatRef) error {
	info, err := d.Settings.Get(ctx, domain.SettingInfoMessage)
	if err != nil {
		return d.replyError(ctx, ref, err)
	}
	return d.send(ctx, ref, info, backToMenu())
}

func (d *Dispatcher) showAdminMenu(ctx context.Context, ref chatRef) error {
	if !d.Admin.IsAdmin(ref.userID) {
		slogx.FromContext(ctx).Warn("non-admin opened admin panel")
		return d.replyError(ctx, ref, service.ErrAccessDenied)
	}

	count, err := d.Invites.Count(ctx)
	if err != nil {
		return d.replyError(ctx, ref, err)
	}
	return d.send(ctx, ref, adminPanelText(count), adminMenu())
}

func (d *Dispatcher) beginEdit(ctx context.Context, ref chatRef, field domain.SettingKey) error {
	if err := d.Admin.BeginEdit(ctx, ref.chatID, ref.userID, field); err != nil {
		return d.replyError(ctx, ref, err)
	}
	return d.send(ctx, ref, editPrompt(field), nil)
}

func (d *Dispatcher) submitText(ctx context.Context, ref chatRef, text string) error {
	res, err := d.Admin.Submit(ctx, ref.chatID, ref.userID, text)
	if errors.Is(err, service.ErrNoPendingEdit) {
		// Plain chatter outside an edit gets no reply.
		return nil
	}
	if errors.Is(err, service.ErrValidation) && res.Field != domain.SettingInviteDays {
		return d.send(ctx, ref, textEmptyValue, nil)
	}
	if err != nil {
		return d.replyError(ctx, ref, err)
	}
	return d.send(ctx, ref, editConfirmation(res), backToAdmin())
}

func (d *Dispatcher) markUsed(ctx context.Context, ref chatRef, code string) error {
	if !d.Admin.IsAdmin(ref.userID) {
		return d.replyError(ctx, ref, service.ErrAccessDenied)
	}
	if code == "" {
		return d.send(ctx, ref, textUsedUsage, nil)
	}
	if err := d.Invites.MarkUsed(ctx, code); err != nil {
		return d.replyError(ctx, ref, err)
	}
	return d.send(ctx, ref, fmt.Sprintf("Invite %s marked as used.", code), nil)
}

// replyError tells the user what went wrong without leaking details. The
// reply for ErrAccessDenied never names what was attempted.
func (d *Dispatcher) replyError(ctx context.Context, ref chatRef, err error) error {
	var text string
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		text = textAccessDenied
	case errors.Is(err, service.ErrValidation):
		text = textInvalidNumber
	case errors.Is(err, service.ErrRateLimited):
		text = textThrottled
	case errors.Is(err, service.ErrLinkCreationFailed):
		text = textLinkFailed
	case errors.Is(err, service.ErrPersistenceLost):
		text = textSaveFailed
	case errors.Is(err, service.ErrConfiguration):
		text = textMisconfigured
	case errors.Is(err, service.ErrInviteNotFound):
		text = textInviteNotFound
	default:
		slogx.FromContext(ctx).Error("update failed", "error", err)
		text = textGenericError
	}
	return d.send(ctx, ref, text, nil)
}

func (d *Dispatcher) send(ctx context.Context, ref chatRef, text string, markup *telegram.InlineKeyboardMarkup) error {
	_, err := d.Messenger.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:             ref.chatID,
		Text:               text,
		ReplyMarkup:        markup,
		LinkPreviewOptions: &telegram.LinkPreviewOptions{IsDisabled: true},
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (d *Dispatcher) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.UTC
}

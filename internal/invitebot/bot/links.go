package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/invitebot/pkg/telegram"
)

// ChannelAPI is the part of the Bot API needed to manage channel invite
// links. *telegram.Client implements it.
type ChannelAPI interface {
	GetMe(ctx context.Context) (telegram.User, error)
	GetChatAdministrators(ctx context.Context, chatID int64) ([]telegram.ChatMember, error)
	CreateChatInviteLink(ctx context.Context, p telegram.CreateChatInviteLinkParams) (telegram.ChatInviteLink, error)
	RevokeChatInviteLink(ctx context.Context, chatID int64, link string) (telegram.ChatInviteLink, error)
}

// ChannelLinks mints single-use invite links for one channel.
type ChannelLinks struct {
	API       ChannelAPI
	ChannelID int64

	mu    sync.Mutex
	botID int64
}

func NewChannelLinks(api ChannelAPI, channelID int64) *ChannelLinks {
	return &ChannelLinks{API: api, ChannelID: channelID}
}

// HasInvitePermission reports whether the bot is an administrator of the
// channel allowed to invite users. The channel creator always may.
func (l *ChannelLinks) HasInvitePermission(ctx context.Context) (bool, error) {
	botID, err := l.self(ctx)
	if err != nil {
		return false, err
	}

	admins, err := l.API.GetChatAdministrators(ctx, l.ChannelID)
	if err != nil {
		return false, fmt.Errorf("get channel administrators: %w", err)
	}

	for _, m := range admins {
		if m.User.ID != botID {
			continue
		}
		return m.Status == "creator" || m.CanInviteUsers, nil
	}
	return false, nil
}

func (l *ChannelLinks) CreateSingleUseLink(ctx context.Context, name string, expiresAt time.Time) (string, error) {
	link, err := l.API.CreateChatInviteLink(ctx, telegram.CreateChatInviteLinkParams{
		ChatID:      l.ChannelID,
		Name:        name,
		ExpireDate:  expiresAt.Unix(),
		MemberLimit: 1,
	})
	if err != nil {
		return "", fmt.Errorf("create invite link: %w", err)
	}
	return link.InviteLink, nil
}

func (l *ChannelLinks) RevokeLink(ctx context.Context, link string) error {
	if _, err := l.API.RevokeChatInviteLink(ctx, l.ChannelID, link); err != nil {
		return fmt.Errorf("revoke invite link: %w", err)
	}
	return nil
}

func (l *ChannelLinks) self(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.botID != 0 {
		return l.botID, nil
	}

	me, err := l.API.GetMe(ctx)
	if err != nil {
		return 0, fmt.Errorf("get bot identity: %w", err)
	}
	l.botID = me.ID
	return l.botID, nil
}

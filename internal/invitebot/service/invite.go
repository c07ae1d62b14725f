package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/metrics"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store"
	"github.com/aussiebroadwan/invitebot/pkg/cryptox"
	"github.com/aussiebroadwan/invitebot/pkg/ratelimit"
	"github.com/aussiebroadwan/invitebot/pkg/slogx"
)

const (
	// InvitePageSize is the number of invites per listing page.
	InvitePageSize = 10

	// DefaultIssueAttempts bounds code regeneration after collisions.
	DefaultIssueAttempts = 3
)

// LinkProvider mints platform invite links for the private channel.
type LinkProvider interface {
	// HasInvitePermission reports whether the bot may create links.
	HasInvitePermission(ctx context.Context) (bool, error)

	// CreateSingleUseLink mints a link redeemable once and expiring at expiresAt.
	CreateSingleUseLink(ctx context.Context, name string, expiresAt time.Time) (string, error)

	// RevokeLink invalidates a link minted earlier.
	RevokeLink(ctx context.Context, link string) error
}

type InviteService struct {
	Store    store.Store
	Settings *SettingsService
	Links    LinkProvider

	// Limiter throttles Issue per requester. Nil disables throttling.
	Limiter *ratelimit.Keyed

	// Optional overrides, mostly for tests.
	Now         func() time.Time
	NewCode     func() (string, error)
	MaxAttempts int
}

// Issued is what the requester gets back from Issue.
type Issued struct {
	Code      string
	Link      string
	ExpiresAt time.Time
}

// InvitePage is one page of the invite listing.
type InvitePage struct {
	Invites    []domain.Invite
	Offset     int
	NextOffset int
	HasMore    bool
	Now        time.Time
}

// Issue mints a single-use link valid for the configured number of days and
// records it against requesterID.
//
// The link is minted before the row is written. When the write fails the
// link is revoked so no live link exists without a record; a collision on
// the code regenerates it and tries again up to MaxAttempts times.
func (s *InviteService) Issue(ctx context.Context, requesterID int64) (Issued, error) {
	log := slogx.FromContext(ctx).With(slog.Int64("requester_id", requesterID))

	// 1. Throttle repeated requests from the same user.
	if s.Limiter != nil {
		if ok, retry := s.Limiter.Allow(strconv.FormatInt(requesterID, 10)); !ok {
			log.Warn("invite request throttled", slog.Duration("retry_after", retry))
			metrics.InvitesIssued.WithLabelValues("throttled").Inc()
			return Issued{}, fmt.Errorf("%w: retry in %s", ErrRateLimited, retry.Round(time.Second))
		}
	}

	// 2. Resolve the validity period.
	days, err := s.Settings.InviteDays(ctx)
	if err != nil {
		log.Error("cannot read invite validity period", slog.Any("error", err))
		metrics.InvitesIssued.WithLabelValues("config_error").Inc()
		return Issued{}, err
	}

	// 3. The bot must be able to create links in the channel.
	allowed, err := s.Links.HasInvitePermission(ctx)
	if err != nil || !allowed {
		log.Warn("bot lacks invite permission", slog.Any("error", err))
		metrics.InvitesIssued.WithLabelValues("no_permission").Inc()
		if err != nil {
			return Issued{}, fmt.Errorf("%w: permission check: %w", ErrLinkCreationFailed, err)
		}
		return Issued{}, fmt.Errorf("%w: bot cannot invite users to the channel", ErrLinkCreationFailed)
	}

	now := s.now().UTC()
	expiresAt := now.AddDate(0, 0, days)

	for attempt := 1; attempt <= s.maxAttempts(); attempt++ {
		// 4. Generate the code and mint the link.
		code, err := s.newCode()
		if err != nil {
			log.Error("failed to generate invite code", slog.Any("error", err))
			return Issued{}, err
		}

		link, err := s.Links.CreateSingleUseLink(ctx, "Invite_"+code, expiresAt)
		if err != nil {
			log.Warn("link provider rejected invite", slog.String("code", code), slog.Any("error", err))
			metrics.InvitesIssued.WithLabelValues("provider_error").Inc()
			return Issued{}, fmt.Errorf("%w: %w", ErrLinkCreationFailed, err)
		}

		// 5. Persist; the unique constraint on code decides collisions.
		invite := domain.Invite{
			Code:        code,
			Link:        link,
			CreatedAt:   now,
			ExpiresAt:   expiresAt,
			RequesterID: requesterID,
		}
		err = s.Store.Invites().CreateInvite(ctx, &invite)
		if err == nil {
			log.Info("invite issued",
				slog.Int64("invite_id", invite.ID),
				slog.String("code", code),
				slog.Time("expires_at", expiresAt),
				slog.Int("attempt", attempt),
			)
			metrics.InvitesIssued.WithLabelValues("ok").Inc()
			return Issued{Code: code, Link: link, ExpiresAt: expiresAt}, nil
		}

		s.revoke(ctx, log, link)

		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("invite code collision, regenerating",
				slog.String("code", code),
				slog.Int("attempt", attempt),
			)
			metrics.InviteCodeCollisions.Inc()
			continue
		}

		log.Error("failed to persist invite", slog.String("code", code), slog.Any("error", err))
		metrics.InvitesIssued.WithLabelValues("store_error").Inc()
		return Issued{}, fmt.Errorf("%w: %w", ErrPersistenceLost, err)
	}

	metrics.InvitesIssued.WithLabelValues("collisions").Inc()
	return Issued{}, fmt.Errorf("%w: %w after %d attempts", ErrLinkCreationFailed, ErrDuplicateCode, s.maxAttempts())
}

// ListPage returns up to InvitePageSize invites newest first. A full page
// sets HasMore since another page may follow at NextOffset.
func (s *InviteService) ListPage(ctx context.Context, offset int) (InvitePage, error) {
	offset = max(offset, 0)

	invites, err := s.Store.Invites().ListInvites(ctx, offset, InvitePageSize)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invites",
			slog.Int("offset", offset),
			slog.Any("error", err),
		)
		return InvitePage{}, err
	}

	page := InvitePage{
		Invites: invites,
		Offset:  offset,
		HasMore: len(invites) == InvitePageSize,
		Now:     s.now(),
	}
	if page.HasMore {
		page.NextOffset = offset + InvitePageSize
	}
	return page, nil
}

// MarkUsed records that the invite with code has been redeemed.
func (s *InviteService) MarkUsed(ctx context.Context, code string) error {
	err := s.Store.Invites().MarkInviteUsed(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrInviteNotFound, code)
		}
		return err
	}

	slogx.FromContext(ctx).Info("invite marked used", slog.String("code", code))
	return nil
}

// Count returns the number of invites ever issued.
func (s *InviteService) Count(ctx context.Context) (int64, error) {
	return s.Store.Invites().CountInvites(ctx)
}

func (s *InviteService) revoke(ctx context.Context, log *slog.Logger, link string) {
	if err := s.Links.RevokeLink(ctx, link); err != nil {
		// The link stays redeemable with no row pointing at it.
		log.Error("orphaned invite link left active",
			slog.String("link", link),
			slog.Any("error", err),
		)
		metrics.OrphanedLinks.Inc()
	}
}

func (s *InviteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *InviteService) newCode() (string, error) {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return cryptox.GenerateInviteCode()
}

func (s *InviteService) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return DefaultIssueAttempts
}

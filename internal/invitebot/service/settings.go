package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store"
	"github.com/aussiebroadwan/invitebot/pkg/slogx"
)

type SettingsService struct {
	Store store.Store

	// Defaults installed by Initialize. Nil uses domain.DefaultSettings.
	Defaults map[domain.SettingKey]string
}

// Initialize installs defaults for any missing key. Safe on every start.
func (s *SettingsService) Initialize(ctx context.Context) error {
	defaults := s.Defaults
	if defaults == nil {
		defaults = domain.DefaultSettings()
	}

	// Seed every key in one transaction so a failure leaves nothing behind.
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Settings().InitDefaults(ctx, defaults)
	})
	if err != nil {
		return fmt.Errorf("initialize settings: %w", err)
	}

	slogx.FromContext(ctx).Debug("settings initialized", "keys", len(defaults))
	return nil
}

// Get returns the stored value. Absence means Initialize was skipped or the
// table was tampered with and is reported as ErrConfiguration.
func (s *SettingsService) Get(ctx context.Context, key domain.SettingKey) (string, error) {
	value, err := s.Store.Settings().GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: setting %q is missing", ErrConfiguration, key)
		}
		return "", err
	}
	return value, nil
}

// Set overwrites the value without checking its shape.
func (s *SettingsService) Set(ctx context.Context, key domain.SettingKey, value string) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	return s.Store.Settings().SetSetting(ctx, key, value)
}

// InviteDays returns the configured validity period in days.
func (s *SettingsService) InviteDays(ctx context.Context) (int, error) {
	raw, err := s.Get(ctx, domain.SettingInviteDays)
	if err != nil {
		return 0, err
	}

	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: invite_days %q is not a number", ErrConfiguration, raw)
	}
	if days <= 0 || days > domain.MaxInviteDays {
		return 0, fmt.Errorf("%w: invite_days must be between 1 and %d, got %d", ErrConfiguration, domain.MaxInviteDays, days)
	}
	return days, nil
}

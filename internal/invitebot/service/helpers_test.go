package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newInitializedSettings(t *testing.T, st store.Store) *SettingsService {
	t.Helper()

	settings := &SettingsService{Store: st}
	require.NoError(t, settings.Initialize(context.Background()))
	return settings
}

// fakeLinks is an in-memory LinkProvider.
type fakeLinks struct {
	mu sync.Mutex

	permitted     bool
	permissionErr error
	createErr     error
	revokeErr     error

	created []string
	names   []string
	expires []time.Time
	revoked []string
}

func newFakeLinks() *fakeLinks { return &fakeLinks{permitted: true} }

func (f *fakeLinks) HasInvitePermission(ctx context.Context) (bool, error) {
	return f.permitted, f.permissionErr
}

func (f *fakeLinks) CreateSingleUseLink(ctx context.Context, name string, expiresAt time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return "", f.createErr
	}
	link := fmt.Sprintf("https://t.me/+link%d", len(f.created)+1)
	f.created = append(f.created, link)
	f.names = append(f.names, name)
	f.expires = append(f.expires, expiresAt)
	return link, nil
}

func (f *fakeLinks) RevokeLink(ctx context.Context, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.revoked = append(f.revoked, link)
	return f.revokeErr
}

// sequenceCodes returns the given codes in order, then fails.
func sequenceCodes(codes ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(codes) {
			return "", errors.New("no more codes")
		}
		code := codes[i]
		i++
		return code, nil
	}
}

// failingInvitesStore wraps a Store and makes CreateInvite fail.
type failingInvitesStore struct {
	store.Store
	err error
}

func (s failingInvitesStore) Invites() store.Invites {
	return failingInvites{Invites: s.Store.Invites(), err: s.err}
}

type failingInvites struct {
	store.Invites
	err error
}

func (f failingInvites) CreateInvite(context.Context, *domain.Invite) error { return f.err }

// partialSeedStore runs transactions on the wrapped Store but makes
// InitDefaults fail after writing one key.
type partialSeedStore struct {
	store.Store
	err error
}

func (s partialSeedStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(partialSeedTx{baseTx: tx, err: s.err})
	})
}

// baseTx names the embedded field so it does not shadow the promoted Tx method.
type baseTx = store.Tx

type partialSeedTx struct {
	baseTx
	err error
}

func (t partialSeedTx) Settings() store.Settings {
	return partialSeedSettings{Settings: t.baseTx.Settings(), err: t.err}
}

type partialSeedSettings struct {
	store.Settings
	err error
}

func (s partialSeedSettings) InitDefaults(ctx context.Context, defaults map[domain.SettingKey]string) error {
	if err := s.SetSetting(ctx, domain.SettingWelcomeMessage, defaults[domain.SettingWelcomeMessage]); err != nil {
		return err
	}
	return s.err
}

package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose the sub-repositories so a transaction scoped Store hands out repos
// bound to the same transaction.
type Store interface {
	Settings() Settings
	Invites() Invites

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. The transaction is rolled back
	// when fn returns an error and committed otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Settings interface {
	// InitDefaults inserts every value in defaults whose key has no row yet.
	// Existing rows are never touched.
	InitDefaults(ctx context.Context, defaults map[domain.SettingKey]string) error

	// GetSetting returns ErrNotFound when the key has never been written.
	GetSetting(ctx context.Context, key domain.SettingKey) (string, error)

	// SetSetting upserts the value, last write wins.
	SetSetting(ctx context.Context, key domain.SettingKey, value string) error
}

type Invites interface {
	// CreateInvite inserts a new invite and fills in its ID. A code collision
	// returns ErrAlreadyExists.
	CreateInvite(ctx context.Context, inv *domain.Invite) error

	// ListInvites returns up to limit invites, newest first, skipping offset rows.
	ListInvites(ctx context.Context, offset, limit int) ([]domain.Invite, error)

	GetInviteByCode(ctx context.Context, code string) (domain.Invite, error)

	// MarkInviteUsed flips used=1. ErrNotFound when no invite has the code.
	MarkInviteUsed(ctx context.Context, code string) error

	CountInvites(ctx context.Context) (int64, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/store"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store/drivers/sqlite/gen"
)

var errNestedTx = errors.New("sqlite: nested transactions are not supported")

// txStore scopes the repositories to a single *sql.Tx. Settings seeding
// runs through it so a partial write is never left behind.
type txStore struct {
	tx *sql.Tx
	q  *gen.Queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx, q: gen.New(tx)}
}

func (t *txStore) Settings() store.Settings { return &settingsRepo{q: t.q} }
func (t *txStore) Invites() store.Invites   { return &invitesRepo{q: t.q} }

func (t *txStore) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return errNestedTx }

// The connection and schema belong to the parent Store.
func (t *txStore) ApplyMigrations() error         { return nil }
func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

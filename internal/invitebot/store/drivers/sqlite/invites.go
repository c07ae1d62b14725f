package sqlite

import (
	"context"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store/drivers/sqlite/gen"
)

type invitesRepo struct {
	q *gen.Queries
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv *domain.Invite) error {
	id, err := r.q.CreateInvite(ctx, gen.CreateInviteParams{
		Code:        inv.Code,
		Link:        inv.Link,
		CreatedAt:   inv.CreatedAt.UTC(),
		ExpiresAt:   inv.ExpiresAt.UTC(),
		RequesterID: inv.RequesterID,
	})
	if err != nil {
		return mapConstraint(err)
	}

	inv.ID = id
	return nil
}

func (r *invitesRepo) ListInvites(ctx context.Context, offset, limit int) ([]domain.Invite, error) {
	rows, err := r.q.ListInvites(ctx, gen.ListInvitesParams{
		Limit:  int64(limit),
		Offset: int64(offset),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Invite, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapInvite(row))
	}
	return out, nil
}

func (r *invitesRepo) GetInviteByCode(ctx context.Context, code string) (domain.Invite, error) {
	row, err := r.q.GetInviteByCode(ctx, code)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return mapInvite(row), nil
}

func (r *invitesRepo) MarkInviteUsed(ctx context.Context, code string) error {
	n, err := r.q.MarkInviteUsed(ctx, code)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitesRepo) CountInvites(ctx context.Context) (int64, error) {
	return r.q.CountInvites(ctx)
}

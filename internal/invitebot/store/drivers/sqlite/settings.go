package sqlite

import (
	"context"
	"maps"
	"slices"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store/drivers/sqlite/gen"
)

type settingsRepo struct {
	q *gen.Queries
}

func (r *settingsRepo) InitDefaults(ctx context.Context, defaults map[domain.SettingKey]string) error {
	for _, key := range slices.Sorted(maps.Keys(defaults)) {
		err := r.q.InsertSettingIfAbsent(ctx, gen.InsertSettingIfAbsentParams{
			Key:   key.String(),
			Value: defaults[key],
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *settingsRepo) GetSetting(ctx context.Context, key domain.SettingKey) (string, error) {
	value, err := r.q.GetSetting(ctx, key.String())
	if err != nil {
		return "", mapNotFound(err)
	}
	return value, nil
}

func (r *settingsRepo) SetSetting(ctx context.Context, key domain.SettingKey, value string) error {
	return r.q.UpsertSetting(ctx, gen.UpsertSettingParams{
		Key:   key.String(),
		Value: value,
	})
}

package repository

import (
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

func (r *Repository) GetGlobalSettings() (*domain.GlobalSettings, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT default_time_zone, week_start, use_24h FROM global_settings WHERE id
	`

	settings := &domain.GlobalSettings{}
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(&settings.DefaultTimeZone, &settings.WeekStart, &settings.Use24h); err != nil {
		return nil, err
	}

	return settings, nil
}

func (r *Repository) UpdateGlobalSettings(settings *domain.GlobalSettings) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE global_settings
		SET default_time_zone = $1, week_start = $2, use_24h = $3
		WHERE id
	`

	if _, err := r.dbpool.ExecContext(ctx, query, settings.DefaultTimeZone, settings.WeekStart, settings.Use24h); err != nil {
		return err
	}

	return nil
}

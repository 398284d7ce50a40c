package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

func (r *Repository) CreateOverride(o *domain.Override) error {
	if !o.StartUTC.Before(o.EndUTC) {
		return schedule.ErrInvalidRange
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	query := `
		INSERT INTO overrides (id, period_id, rotation_id, original_user_id, replacement_user_id, start_utc, end_utc, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	args := []any{o.ID, o.PeriodID, o.RotationID, o.OriginalUserID, o.ReplacementUserID, o.StartUTC, o.EndUTC, o.Reason}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&o.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetOverrideByID(id string) (*domain.Override, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT period_id, rotation_id, original_user_id, replacement_user_id, start_utc, end_utc, reason, created_at
		FROM overrides WHERE id = $1
	`

	o := &domain.Override{
		ID: id,
	}

	dst := []any{&o.PeriodID, &o.RotationID, &o.OriginalUserID, &o.ReplacementUserID, &o.StartUTC, &o.EndUTC, &o.Reason, &o.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return o, nil
}

func (r *Repository) GetAllOverrides() ([]*domain.Override, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, period_id, rotation_id, original_user_id, replacement_user_id, start_utc, end_utc, reason, created_at
		FROM overrides
		ORDER BY created_at, id
	`

	return r.scanOverrides(ctx, query)
}

// GetOverridesIntersecting returns overrides whose window intersects
// [winStart, winEnd), optionally restricted to one rotation's scope (the
// rotation itself or any of its periods).
func (r *Repository) GetOverridesIntersecting(rotationID *string, winStart, winEnd time.Time) ([]*domain.Override, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT o.id, o.period_id, o.rotation_id, o.original_user_id, o.replacement_user_id, o.start_utc, o.end_utc, o.reason, o.created_at
		FROM overrides o
		LEFT JOIN periods p ON o.period_id = p.id
		WHERE o.end_utc > $1 AND o.start_utc < $2
	`
	args := []any{winStart, winEnd}
	if rotationID != nil {
		query += ` AND (o.rotation_id = $3 OR p.rotation_id = $3)`
		args = append(args, *rotationID)
	}
	query += ` ORDER BY o.created_at, o.id`

	return r.scanOverrides(ctx, query, args...)
}

// Overrides are immutable: no update, replacement is delete + recreate.
func (r *Repository) DeleteOverride(id string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM overrides WHERE id = $1
	`

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

func (r *Repository) scanOverrides(ctx context.Context, query string, args ...any) ([]*domain.Override, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make([]*domain.Override, 0)
	for rows.Next() {
		o := &domain.Override{}
		dst := []any{&o.ID, &o.PeriodID, &o.RotationID, &o.OriginalUserID, &o.ReplacementUserID, &o.StartUTC, &o.EndUTC, &o.Reason, &o.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return overrides, nil
}

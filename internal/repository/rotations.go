package repository

import (
	"github.com/google/uuid"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

func (r *Repository) CreateRotation(rot *domain.Rotation) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if rot.ID == "" {
		rot.ID = uuid.NewString()
	}

	query := `
		INSERT INTO rotations (id, name, description, time_zone, period_length_days, start_date_utc, is_active, default_primary_user_id, default_secondary_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, version
	`

	args := []any{rot.ID, rot.Name, rot.Description, rot.TimeZone, rot.PeriodLengthDays, rot.StartDateUTC, rot.IsActive, rot.DefaultPrimaryUserID, rot.DefaultSecondaryUserID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&rot.CreatedAt, &rot.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRotationByID(id string) (*domain.Rotation, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT name, description, time_zone, period_length_days, start_date_utc, is_active, default_primary_user_id, default_secondary_user_id, created_at, version
		FROM rotations WHERE id = $1
	`

	rot := &domain.Rotation{
		ID: id,
	}

	dst := []any{&rot.Name, &rot.Description, &rot.TimeZone, &rot.PeriodLengthDays, &rot.StartDateUTC, &rot.IsActive, &rot.DefaultPrimaryUserID, &rot.DefaultSecondaryUserID, &rot.CreatedAt, &rot.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return rot, nil
}

func (r *Repository) GetAllRotations(activeOnly bool) ([]*domain.Rotation, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, name, description, time_zone, period_length_days, start_date_utc, is_active, default_primary_user_id, default_secondary_user_id, created_at, version
		FROM rotations
	`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rotations := make([]*domain.Rotation, 0)
	for rows.Next() {
		rot := &domain.Rotation{}
		dst := []any{&rot.ID, &rot.Name, &rot.Description, &rot.TimeZone, &rot.PeriodLengthDays, &rot.StartDateUTC, &rot.IsActive, &rot.DefaultPrimaryUserID, &rot.DefaultSecondaryUserID, &rot.CreatedAt, &rot.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		rotations = append(rotations, rot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rotations, nil
}

func (r *Repository) UpdateRotation(rot *domain.Rotation) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE rotations
		SET
			name = $1,
			description = $2,
			time_zone = $3,
			period_length_days = $4,
			start_date_utc = $5,
			is_active = $6,
			default_primary_user_id = $7,
			default_secondary_user_id = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	args := []any{rot.Name, rot.Description, rot.TimeZone, rot.PeriodLengthDays, rot.StartDateUTC, rot.IsActive, rot.DefaultPrimaryUserID, rot.DefaultSecondaryUserID, rot.ID, rot.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&rot.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteRotation(id string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM rotations WHERE id = $1
	`

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

func (r *Repository) GetRotationMembers(rotationID string) ([]*domain.RotationMember, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, user_id, sort_order, is_active
		FROM rotation_members WHERE rotation_id = $1
		ORDER BY sort_order, id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, rotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.RotationMember, 0)
	for rows.Next() {
		m := &domain.RotationMember{RotationID: rotationID}
		if err := rows.Scan(&m.ID, &m.UserID, &m.SortOrder, &m.IsActive); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *Repository) AddRotationMember(m *domain.RotationMember) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	query := `
		INSERT INTO rotation_members (id, rotation_id, user_id, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.dbpool.ExecContext(ctx, query, m.ID, m.RotationID, m.UserID, m.SortOrder, m.IsActive); err != nil {
		return err
	}

	return nil
}

func (r *Repository) RemoveRotationMember(id string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM rotation_members WHERE id = $1
	`

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

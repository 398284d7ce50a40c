package repository

import (
	"github.com/google/uuid"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

func (r *Repository) CreatePeriodTemplate(tpl *domain.PeriodTemplate) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}

	query := `
		INSERT INTO period_templates (id, rotation_id, day_of_week, start_time, end_time, name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING version
	`

	args := []any{tpl.ID, tpl.RotationID, tpl.DayOfWeek, tpl.StartTime, tpl.EndTime, tpl.Name, tpl.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&tpl.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetPeriodTemplate(id string) (*domain.PeriodTemplate, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT rotation_id, day_of_week, start_time, end_time, name, is_active, version
		FROM period_templates WHERE id = $1
	`

	tpl := &domain.PeriodTemplate{
		ID: id,
	}

	dst := []any{&tpl.RotationID, &tpl.DayOfWeek, &tpl.StartTime, &tpl.EndTime, &tpl.Name, &tpl.IsActive, &tpl.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return tpl, nil
}

func (r *Repository) GetPeriodTemplatesByRotationID(rotationID string) ([]*domain.PeriodTemplate, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, day_of_week, start_time, end_time, name, is_active, version
		FROM period_templates WHERE rotation_id = $1
		ORDER BY day_of_week, start_time, id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, rotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*domain.PeriodTemplate, 0)
	for rows.Next() {
		tpl := &domain.PeriodTemplate{RotationID: rotationID}
		dst := []any{&tpl.ID, &tpl.DayOfWeek, &tpl.StartTime, &tpl.EndTime, &tpl.Name, &tpl.IsActive, &tpl.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *Repository) UpdatePeriodTemplate(tpl *domain.PeriodTemplate) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE period_templates
		SET
			day_of_week = $1,
			start_time = $2,
			end_time = $3,
			name = $4,
			is_active = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	args := []any{tpl.DayOfWeek, tpl.StartTime, tpl.EndTime, tpl.Name, tpl.IsActive, tpl.ID, tpl.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&tpl.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePeriodTemplate(id string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM period_templates WHERE id = $1
	`

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

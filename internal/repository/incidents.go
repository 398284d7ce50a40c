package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

func (r *Repository) CreateIncident(inc *domain.Incident) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if inc.ID == "" {
		inc.ID = uuid.NewString()
	}

	query := `
		INSERT INTO incidents (id, title, rotation_id, assigned_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	args := []any{inc.ID, inc.Title, inc.RotationID, inc.AssignedUserID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&inc.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetIncidentByID(id string) (*domain.Incident, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT title, rotation_id, assigned_user_id, created_at, resolved_at
		FROM incidents WHERE id = $1
	`

	inc := &domain.Incident{
		ID: id,
	}

	dst := []any{&inc.Title, &inc.RotationID, &inc.AssignedUserID, &inc.CreatedAt, &inc.ResolvedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return inc, nil
}

func (r *Repository) GetAllIncidents() ([]*domain.Incident, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, title, rotation_id, assigned_user_id, created_at, resolved_at
		FROM incidents
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incidents := make([]*domain.Incident, 0)
	for rows.Next() {
		inc := &domain.Incident{}
		dst := []any{&inc.ID, &inc.Title, &inc.RotationID, &inc.AssignedUserID, &inc.CreatedAt, &inc.ResolvedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return incidents, nil
}

func (r *Repository) ResolveIncident(id string, at time.Time) (*domain.Incident, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE incidents SET resolved_at = $1
		WHERE id = $2 AND resolved_at IS NULL
		RETURNING title, rotation_id, assigned_user_id, created_at, resolved_at
	`

	inc := &domain.Incident{
		ID: id,
	}

	dst := []any{&inc.Title, &inc.RotationID, &inc.AssignedUserID, &inc.CreatedAt, &inc.ResolvedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, at, id).Scan(dst...); err != nil {
		return nil, err
	}

	return inc, nil
}

package repository

import (
	"github.com/google/uuid"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

func (r *Repository) GetAssignmentsByPeriodID(periodID string) ([]*domain.Assignment, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, user_id, role
		FROM assignments WHERE period_id = $1
		ORDER BY role
	`

	rows, err := r.dbpool.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.Assignment, 0)
	for rows.Next() {
		a := &domain.Assignment{PeriodID: periodID}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Role); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// GetAssignmentsForPeriods loads assignments for many periods in one round
// trip, keyed by period id, for effective-schedule snapshots.
func (r *Repository) GetAssignmentsForPeriods(periodIDs []string) (map[string][]*domain.Assignment, error) {
	byPeriod := make(map[string][]*domain.Assignment)
	if len(periodIDs) == 0 {
		return byPeriod, nil
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, period_id, user_id, role
		FROM assignments WHERE period_id = ANY($1)
	`

	rows, err := r.dbpool.QueryContext(ctx, query, periodIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a := &domain.Assignment{}
		if err := rows.Scan(&a.ID, &a.PeriodID, &a.UserID, &a.Role); err != nil {
			return nil, err
		}
		byPeriod[a.PeriodID] = append(byPeriod[a.PeriodID], a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return byPeriod, nil
}

// UpsertAssignment sets the responder for one (period, role), replacing a
// previous holder of the role if there was one.
func (r *Repository) UpsertAssignment(a *domain.Assignment) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `
		INSERT INTO assignments (id, period_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT assignments_period_id_role_key
		DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id
	`

	if err := r.dbpool.QueryRowContext(ctx, query, a.ID, a.PeriodID, a.UserID, a.Role).Scan(&a.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteAssignment(periodID string, role domain.AssignmentRole) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM assignments WHERE period_id = $1 AND role = $2
	`

	res, err := r.dbpool.ExecContext(ctx, query, periodID, role)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

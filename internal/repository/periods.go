package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

// CreatePeriod inserts a period, idempotent by its natural key
// (rotation, start, end, name): re-submitting the same proposal returns the
// already-stored period instead of creating a duplicate.
func (r *Repository) CreatePeriod(p *domain.Period) error {
	if !p.StartUTC.Before(p.EndUTC) {
		return schedule.ErrInvalidRange
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO periods (id, rotation_id, name, start_utc, end_utc, is_locked, calendar_event_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT periods_natural_key DO NOTHING
		RETURNING created_at, version
	`

	args := []any{p.ID, p.RotationID, p.Name, p.StartUTC, p.EndUTC, p.IsLocked, p.CalendarEventID}
	err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.CreatedAt, &p.Version)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	// Conflict on the natural key: surface the existing period.
	query = `
		SELECT id, is_locked, calendar_event_id, created_at, version
		FROM periods
		WHERE rotation_id = $1 AND start_utc = $2 AND end_utc = $3 AND name = $4
	`
	dst := []any{&p.ID, &p.IsLocked, &p.CalendarEventID, &p.CreatedAt, &p.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, p.RotationID, p.StartUTC, p.EndUTC, p.Name).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetPeriodByID(id string) (*domain.Period, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT rotation_id, name, start_utc, end_utc, is_locked, calendar_event_id, created_at, version
		FROM periods WHERE id = $1
	`

	p := &domain.Period{
		ID: id,
	}

	dst := []any{&p.RotationID, &p.Name, &p.StartUTC, &p.EndUTC, &p.IsLocked, &p.CalendarEventID, &p.CreatedAt, &p.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *Repository) GetPeriodsByRotationID(rotationID string) ([]*domain.Period, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, rotation_id, name, start_utc, end_utc, is_locked, calendar_event_id, created_at, version
		FROM periods WHERE rotation_id = $1
		ORDER BY start_utc, id
	`

	return r.scanPeriods(ctx, query, rotationID)
}

// GetPeriodsOverlapping returns periods intersecting [winStart, winEnd),
// optionally scoped to one rotation. Overlapping periods of the same
// rotation are all returned; disambiguation happens at query time.
func (r *Repository) GetPeriodsOverlapping(rotationID *string, winStart, winEnd time.Time) ([]*domain.Period, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, rotation_id, name, start_utc, end_utc, is_locked, calendar_event_id, created_at, version
		FROM periods WHERE end_utc > $1 AND start_utc < $2
	`
	args := []any{winStart, winEnd}
	if rotationID != nil {
		query += ` AND rotation_id = $3`
		args = append(args, *rotationID)
	}
	query += ` ORDER BY start_utc, rotation_id, id`

	return r.scanPeriods(ctx, query, args...)
}

// UpdatePeriod is the single authority for period mutations. The lock check
// and the write happen inside one transaction with the row locked, so two
// racing updates cannot slip past the check. A locked period rejects any
// boundary change with ErrPeriodLocked but still accepts rename and
// lock-flag changes; nothing is written on rejection.
func (r *Repository) UpdatePeriod(p *domain.Period) error {
	if !p.StartUTC.Before(p.EndUTC) {
		return schedule.ErrInvalidRange
	}

	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var (
		curStart  time.Time
		curEnd    time.Time
		curLocked bool
	)
	query := `
		SELECT start_utc, end_utc, is_locked FROM periods WHERE id = $1 FOR UPDATE
	`
	if err := tx.QueryRowContext(ctx, query, p.ID).Scan(&curStart, &curEnd, &curLocked); err != nil {
		return err
	}

	boundariesChanged := !curStart.Equal(p.StartUTC) || !curEnd.Equal(p.EndUTC)
	if curLocked && boundariesChanged {
		return schedule.ErrPeriodLocked
	}

	query = `
		UPDATE periods
		SET
			name = $1,
			start_utc = $2,
			end_utc = $3,
			is_locked = $4,
			calendar_event_id = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`
	args := []any{p.Name, p.StartUTC, p.EndUTC, p.IsLocked, p.CalendarEventID, p.ID, p.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&p.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// DeletePeriod cascades to the period's assignments and period-scoped
// overrides via foreign keys; rotation-scoped overrides are untouched.
func (r *Repository) DeletePeriod(id string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM periods WHERE id = $1
	`

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

func (r *Repository) SetPeriodCalendarEventID(id string, eventID *string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE periods SET calendar_event_id = $1, version = version + 1 WHERE id = $2
		RETURNING version
	`

	var version int32
	if err := r.dbpool.QueryRowContext(ctx, query, eventID, id).Scan(&version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) scanPeriods(ctx context.Context, query string, args ...any) ([]*domain.Period, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	periods := make([]*domain.Period, 0)
	for rows.Next() {
		p := &domain.Period{}
		dst := []any{&p.ID, &p.RotationID, &p.Name, &p.StartUTC, &p.EndUTC, &p.IsLocked, &p.CalendarEventID, &p.CreatedAt, &p.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return periods, nil
}

package repository

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/oncallhq/oncall-manager/backend/internal/config"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	return NewRepository(cfg, db), mock
}

func lockedPeriod() *domain.Period {
	return &domain.Period{
		ID:         "p-1",
		RotationID: "rot-1",
		Name:       "On-Call 2024-01-01",
		StartUTC:   time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC),
		EndUTC:     time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
		IsLocked:   true,
		Version:    3,
	}
}

func TestUpdatePeriod_LockedRejectsBoundaryChange(t *testing.T) {
	repo, mock := newMockRepository(t)

	p := lockedPeriod()
	storedStart := p.StartUTC
	storedEnd := p.EndUTC
	p.EndUTC = p.EndUTC.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT start_utc, end_utc, is_locked FROM periods WHERE id = $1 FOR UPDATE")).
		WithArgs(p.ID).
		WillReturnRows(sqlmock.NewRows([]string{"start_utc", "end_utc", "is_locked"}).
			AddRow(storedStart, storedEnd, true))
	mock.ExpectRollback()

	err := repo.UpdatePeriod(p)
	require.ErrorIs(t, err, schedule.ErrPeriodLocked)
	require.NoError(t, mock.ExpectationsWereMet(), "nothing may be written after a lock rejection")
}

func TestUpdatePeriod_LockedAllowsRename(t *testing.T) {
	repo, mock := newMockRepository(t)

	p := lockedPeriod()
	p.Name = "On-Call 2024-01-01 (handover)"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT start_utc, end_utc, is_locked FROM periods WHERE id = $1 FOR UPDATE")).
		WithArgs(p.ID).
		WillReturnRows(sqlmock.NewRows([]string{"start_utc", "end_utc", "is_locked"}).
			AddRow(p.StartUTC, p.EndUTC, true))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE periods")).
		WithArgs(p.Name, p.StartUTC, p.EndUTC, p.IsLocked, nil, p.ID, int32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int32(4)))
	mock.ExpectCommit()

	err := repo.UpdatePeriod(p)
	require.NoError(t, err)
	require.Equal(t, int32(4), p.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePeriod_UnlockedAllowsBoundaryChange(t *testing.T) {
	repo, mock := newMockRepository(t)

	p := lockedPeriod()
	p.IsLocked = false
	storedStart := p.StartUTC
	storedEnd := p.EndUTC
	p.EndUTC = p.EndUTC.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT start_utc, end_utc, is_locked FROM periods WHERE id = $1 FOR UPDATE")).
		WithArgs(p.ID).
		WillReturnRows(sqlmock.NewRows([]string{"start_utc", "end_utc", "is_locked"}).
			AddRow(storedStart, storedEnd, false))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE periods")).
		WithArgs(p.Name, p.StartUTC, p.EndUTC, p.IsLocked, nil, p.ID, int32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int32(4)))
	mock.ExpectCommit()

	err := repo.UpdatePeriod(p)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePeriod_InvalidRange(t *testing.T) {
	repo, mock := newMockRepository(t)

	p := lockedPeriod()
	p.EndUTC = p.StartUTC

	err := repo.UpdatePeriod(p)
	require.ErrorIs(t, err, schedule.ErrInvalidRange)
	require.NoError(t, mock.ExpectationsWereMet(), "invalid ranges are rejected before touching the database")
}

func TestUpdatePeriod_VersionConflict(t *testing.T) {
	repo, mock := newMockRepository(t)

	p := lockedPeriod()
	p.IsLocked = false
	p.Name = "renamed"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT start_utc, end_utc, is_locked FROM periods WHERE id = $1 FOR UPDATE")).
		WithArgs(p.ID).
		WillReturnRows(sqlmock.NewRows([]string{"start_utc", "end_utc", "is_locked"}).
			AddRow(p.StartUTC, p.EndUTC, false))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE periods")).
		WithArgs(p.Name, p.StartUTC, p.EndUTC, p.IsLocked, nil, p.ID, int32(3)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.UpdatePeriod(p)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePeriod_InvalidRange(t *testing.T) {
	repo, mock := newMockRepository(t)

	p := lockedPeriod()
	p.EndUTC = p.StartUTC

	err := repo.CreatePeriod(p)
	require.ErrorIs(t, err, schedule.ErrInvalidRange)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePeriod_NaturalKeyConflictReturnsExisting(t *testing.T) {
	repo, mock := newMockRepository(t)

	p := &domain.Period{
		RotationID: "rot-1",
		Name:       "On-Call 2024-01-01",
		StartUTC:   time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC),
		EndUTC:     time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
	}

	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// DO NOTHING returns no row on conflict
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO periods")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, is_locked, calendar_event_id, created_at, version")).
		WithArgs(p.RotationID, p.StartUTC, p.EndUTC, p.Name).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_locked", "calendar_event_id", "created_at", "version"}).
			AddRow("p-existing", false, nil, createdAt, int32(1)))

	err := repo.CreatePeriod(p)
	require.NoError(t, err)
	require.Equal(t, "p-existing", p.ID)
	require.Equal(t, int32(1), p.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePeriod(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM periods WHERE id = $1")).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeletePeriod("p-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePeriod_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM periods WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeletePeriod("missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

package handler

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRouteIncident_PicksEffectivePrimary(t *testing.T) {
	h, mock := newTestHandler(t)

	at := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	assignments := sqlmock.NewRows(assignmentColumns).
		AddRow("a-1", "p-1", "carol", "primary")

	expectSnapshot(mock, at, at.Add(time.Nanosecond), nil,
		assignments, sqlmock.NewRows(overrideColumns))

	userID, err := h.routeIncident("rot-1", at)
	require.NoError(t, err)
	require.NotNil(t, userID)
	require.Equal(t, "carol", *userID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteIncident_NoPrimaryRoutesUnassigned(t *testing.T) {
	h, mock := newTestHandler(t)

	// Only a secondary is assigned and the rotation has no default primary.
	// The incident stays unassigned; the secondary is never substituted.
	at := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	assignments := sqlmock.NewRows(assignmentColumns).
		AddRow("a-1", "p-1", "bob", "secondary")

	expectSnapshot(mock, at, at.Add(time.Nanosecond), nil,
		assignments, sqlmock.NewRows(overrideColumns))

	userID, err := h.routeIncident("rot-1", at)
	require.NoError(t, err)
	require.Nil(t, userID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteIncident_UncoveredInstant(t *testing.T) {
	h, mock := newTestHandler(t)

	at := time.Date(2024, 6, 3, 3, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM periods WHERE end_utc > $1 AND start_utc < $2")).
		WithArgs(at, at.Add(time.Nanosecond), "rot-1").
		WillReturnRows(sqlmock.NewRows(periodColumns))

	userID, err := h.routeIncident("rot-1", at)
	require.NoError(t, err)
	require.Nil(t, userID)
	require.NoError(t, mock.ExpectationsWereMet())
}

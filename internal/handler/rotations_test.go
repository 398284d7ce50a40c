package handler

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

func TestPersistProposed_ReportsCreatedBeforeFailure(t *testing.T) {
	h, mock := newTestHandler(t)

	proposed := []schedule.ProposedPeriod{
		{
			RotationID: "rot-1",
			Name:       "On-Call 2024-06-03",
			StartUTC:   time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
			EndUTC:     time.Date(2024, 6, 3, 17, 0, 0, 0, time.UTC),
		},
		{
			RotationID: "rot-1",
			Name:       "On-Call 2024-06-10",
			StartUTC:   time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
			EndUTC:     time.Date(2024, 6, 10, 17, 0, 0, 0, time.UTC),
		},
	}

	createdAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO periods")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "version"}).AddRow(createdAt, int32(1)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO periods")).
		WillReturnError(errors.New("connection reset by peer"))

	created, err := h.persistProposed(proposed)
	require.Error(t, err)
	require.Len(t, created, 1, "periods created before the failure are reported")
	require.Equal(t, "On-Call 2024-06-03", created[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

func routerRows() []domain.EffectiveAssignment {
	carol := "carol"
	dave := "dave"
	return []domain.EffectiveAssignment{
		{
			PeriodID:      "p-1",
			RotationID:    "rot-1",
			StartUTC:      time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			EndUTC:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			PrimaryUserID: &carol,
		},
		{
			PeriodID:      "p-2",
			RotationID:    "rot-1",
			StartUTC:      time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			EndUTC:        time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
			PrimaryUserID: &dave,
		},
	}
}

func TestPickAt_LatestStartWins(t *testing.T) {
	rows := routerRows()

	// both periods cover 10:30, the later-starting one wins
	row := PickAt(rows, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC))
	require.NotNil(t, row)
	require.Equal(t, "p-2", row.PeriodID)

	// before p-2 starts, p-1 is the only cover
	row = PickAt(rows, time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC))
	require.NotNil(t, row)
	require.Equal(t, "p-1", row.PeriodID)
}

func TestPickAt_Boundaries(t *testing.T) {
	rows := routerRows()

	// start is inclusive
	row := PickAt(rows, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	require.NotNil(t, row)
	require.Equal(t, "p-1", row.PeriodID)

	// end is exclusive
	row = PickAt(rows, time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC))
	require.Nil(t, row)
}

func TestPickAt_Uncovered(t *testing.T) {
	rows := routerRows()

	require.Nil(t, PickAt(rows, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)))
	require.Nil(t, PickAt(nil, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestPickAt_EqualStartsTieBreak(t *testing.T) {
	rows := routerRows()
	rows[1].StartUTC = rows[0].StartUTC

	row := PickAt(rows, time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC))
	require.NotNil(t, row)
	require.Equal(t, "p-2", row.PeriodID)
}

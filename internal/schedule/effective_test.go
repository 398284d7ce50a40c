package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

func strptr(s string) *string { return &s }

func effectiveFixture() Snapshot {
	alice := "alice"
	rotation := &domain.Rotation{
		ID:                   "rot-1",
		Name:                 "Platform",
		TimeZone:             "UTC",
		DefaultPrimaryUserID: &alice,
		IsActive:             true,
	}

	return Snapshot{
		Rotations: map[string]*domain.Rotation{"rot-1": rotation},
		Periods: []*domain.Period{
			{
				ID:         "p-1",
				RotationID: "rot-1",
				Name:       "On-Call 2024-01-01",
				StartUTC:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
				EndUTC:     time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC),
			},
			{
				ID:         "p-2",
				RotationID: "rot-1",
				Name:       "On-Call 2024-01-02",
				StartUTC:   time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
				EndUTC:     time.Date(2024, 1, 2, 17, 0, 0, 0, time.UTC),
			},
		},
		Assignments: map[string][]*domain.Assignment{
			"p-2": {
				{ID: "a-1", PeriodID: "p-2", UserID: "bob", Role: domain.RoleSecondary},
			},
		},
	}
}

func TestBuildEffective_DefaultsAndAssignments(t *testing.T) {
	snap := effectiveFixture()

	rows, err := BuildEffective(snap,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// p-1 has no assignments, the rotation default fills primary
	require.Equal(t, "p-1", rows[0].PeriodID)
	require.NotNil(t, rows[0].PrimaryUserID)
	require.Equal(t, "alice", *rows[0].PrimaryUserID)
	require.Nil(t, rows[0].SecondaryUserID)
	require.False(t, rows[0].Overridden)

	// p-2 has an explicit secondary while primary still inherits the default
	require.Equal(t, "p-2", rows[1].PeriodID)
	require.Equal(t, "alice", *rows[1].PrimaryUserID)
	require.NotNil(t, rows[1].SecondaryUserID)
	require.Equal(t, "bob", *rows[1].SecondaryUserID)
}

func TestBuildEffective_ExplicitAssignmentWinsOverDefault(t *testing.T) {
	snap := effectiveFixture()
	snap.Assignments["p-1"] = []*domain.Assignment{
		{ID: "a-2", PeriodID: "p-1", UserID: "carol", Role: domain.RolePrimary},
	}

	rows, err := BuildEffective(snap,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "carol", *rows[0].PrimaryUserID)
}

func TestBuildEffective_OverrideApplies(t *testing.T) {
	snap := effectiveFixture()
	snap.Overrides = []*domain.Override{
		{
			ID:                "o-1",
			PeriodID:          strptr("p-1"),
			OriginalUserID:    "alice",
			ReplacementUserID: "dave",
			StartUTC:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndUTC:            time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Reason:            strptr("vacation"),
			CreatedAt:         time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	rows, err := BuildEffective(snap,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "dave", *rows[0].PrimaryUserID)
	require.True(t, rows[0].Overridden)
	require.NotNil(t, rows[0].Notes)
	require.Equal(t, "vacation", *rows[0].Notes)

	// the period-scoped override does not leak to p-2
	require.Equal(t, "alice", *rows[1].PrimaryUserID)
	require.False(t, rows[1].Overridden)
}

func TestBuildEffective_OverrideWithoutMatchingUser(t *testing.T) {
	snap := effectiveFixture()
	snap.Overrides = []*domain.Override{
		{
			ID:                "o-1",
			PeriodID:          strptr("p-1"),
			OriginalUserID:    "nobody",
			ReplacementUserID: "dave",
			StartUTC:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndUTC:            time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			CreatedAt:         time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	rows, err := BuildEffective(snap,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "alice", *rows[0].PrimaryUserID)
	require.False(t, rows[0].Overridden)
	require.Nil(t, rows[0].Notes)
}

func TestBuildEffective_LastCreatedOverrideWins(t *testing.T) {
	snap := effectiveFixture()
	snap.Overrides = []*domain.Override{
		{
			ID:                "o-2",
			PeriodID:          strptr("p-1"),
			OriginalUserID:    "dave",
			ReplacementUserID: "erin",
			StartUTC:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndUTC:            time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			CreatedAt:         time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:                "o-1",
			PeriodID:          strptr("p-1"),
			OriginalUserID:    "alice",
			ReplacementUserID: "dave",
			StartUTC:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndUTC:            time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			CreatedAt:         time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	rows, err := BuildEffective(snap,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// o-1 (created first) swaps alice for dave, then o-2 swaps dave for erin
	require.Equal(t, "erin", *rows[0].PrimaryUserID)
	require.True(t, rows[0].Overridden)
}

func TestBuildEffective_RotationScopedOverride(t *testing.T) {
	snap := effectiveFixture()
	snap.Overrides = []*domain.Override{
		{
			ID:                "o-1",
			RotationID:        strptr("rot-1"),
			OriginalUserID:    "alice",
			ReplacementUserID: "dave",
			// intersects p-1 only
			StartUTC:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndUTC:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			CreatedAt: time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	rows, err := BuildEffective(snap,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "dave", *rows[0].PrimaryUserID)
	require.Equal(t, "alice", *rows[1].PrimaryUserID)
}

func TestBuildEffective_WindowFiltering(t *testing.T) {
	snap := effectiveFixture()

	// only p-2 intersects; its full boundaries are preserved
	rows, err := BuildEffective(snap,
		time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "p-2", rows[0].PeriodID)
	require.True(t, rows[0].StartUTC.Equal(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)))
	require.True(t, rows[0].EndUTC.Equal(time.Date(2024, 1, 2, 17, 0, 0, 0, time.UTC)))

	// a window touching only the exclusive end of p-2 matches nothing
	rows, err = BuildEffective(snap,
		time.Date(2024, 1, 2, 17, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestBuildEffective_InvalidRange(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := BuildEffective(effectiveFixture(), at, at)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestResolve_NoDefaultsNoAssignments(t *testing.T) {
	rotation := &domain.Rotation{ID: "rot-1"}
	primary, secondary := Resolve(rotation, nil)
	require.Nil(t, primary)
	require.Nil(t, secondary)
}

package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

func chicagoRotation() *domain.Rotation {
	return &domain.Rotation{
		ID:               "rot-1",
		Name:             "Platform",
		TimeZone:         "America/Chicago",
		PeriodLengthDays: 7,
		StartDateUTC:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:         true,
	}
}

func TestExpandTemplates_BusinessHours(t *testing.T) {
	rotation := chicagoRotation()
	templates := []*domain.PeriodTemplate{
		{ID: "tpl-1", RotationID: rotation.ID, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", IsActive: true},
	}

	winStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	winEnd := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	proposals, err := ExpandTemplates(context.Background(), rotation, templates, winStart, winEnd, "")
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	// Monday 2024-01-01 09:00 Chicago is CST, UTC-6
	require.True(t, proposals[0].StartUTC.Equal(time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)))
	require.True(t, proposals[0].EndUTC.Equal(time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)))
	require.Equal(t, "On-Call 2024-01-01", proposals[0].Name)
	require.Equal(t, "tpl-1", proposals[0].TemplateID)
}

func TestExpandTemplates_MultipleWeeks(t *testing.T) {
	rotation := chicagoRotation()
	templates := []*domain.PeriodTemplate{
		{ID: "tpl-1", RotationID: rotation.ID, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", IsActive: true},
		{ID: "tpl-2", RotationID: rotation.ID, DayOfWeek: 2, StartTime: "09:00", EndTime: "17:00", IsActive: true},
	}

	winStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	winEnd := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	proposals, err := ExpandTemplates(context.Background(), rotation, templates, winStart, winEnd, "")
	require.NoError(t, err)
	// two Mondays and two Wednesdays
	require.Len(t, proposals, 4)

	for i := 1; i < len(proposals); i++ {
		require.True(t, proposals[i-1].StartUTC.Before(proposals[i].StartUTC), "proposals must be ordered by start")
	}
}

func TestExpandTemplates_NamePrecedence(t *testing.T) {
	rotation := chicagoRotation()
	tplName := "Weekday Shift"
	templates := []*domain.PeriodTemplate{
		{ID: "tpl-1", RotationID: rotation.ID, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", Name: &tplName, IsActive: true},
	}

	winStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	winEnd := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	// template name seeds the pattern when the request has none
	proposals, err := ExpandTemplates(context.Background(), rotation, templates, winStart, winEnd, "")
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	require.Equal(t, "Weekday Shift 2024-01-01", proposals[0].Name)

	// an explicit request pattern wins over the template name
	proposals, err = ExpandTemplates(context.Background(), rotation, templates, winStart, winEnd, "Coverage {start:%d/%m} to {end:%H:%M}")
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	require.Equal(t, "Coverage 01/01 to 17:00", proposals[0].Name)
}

func TestExpandTemplates_WindowClipping(t *testing.T) {
	rotation := chicagoRotation()
	templates := []*domain.PeriodTemplate{
		{ID: "tpl-1", RotationID: rotation.ID, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", IsActive: true},
	}

	// window ends exactly at the occurrence start, so it is excluded
	winStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	winEnd := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	proposals, err := ExpandTemplates(context.Background(), rotation, templates, winStart, winEnd, "")
	require.NoError(t, err)
	require.Empty(t, proposals)

	// window starting strictly inside the occurrence keeps it, with full
	// boundaries
	winStart = time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	winEnd = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	proposals, err = ExpandTemplates(context.Background(), rotation, templates, winStart, winEnd, "")
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	require.True(t, proposals[0].StartUTC.Equal(time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)))
	require.True(t, proposals[0].EndUTC.Equal(time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)))
}

func TestExpandTemplates_SpringForwardGap(t *testing.T) {
	rotation := chicagoRotation()
	// 2024-03-10 02:00 Chicago does not exist, clocks jump to 03:00
	templates := []*domain.PeriodTemplate{
		{ID: "tpl-1", RotationID: rotation.ID, DayOfWeek: 6, StartTime: "01:30", EndTime: "03:30", IsActive: true},
	}

	winStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	winEnd := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	proposals, err := ExpandTemplates(context.Background(), rotation, templates, winStart, winEnd, "")
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	// 01:30 CST = 07:30 UTC; 03:30 CDT = 08:30 UTC. The wall-clock two
	// hour shift really lasts one hour.
	require.True(t, proposals[0].StartUTC.Equal(time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC)))
	require.True(t, proposals[0].EndUTC.Equal(time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)))
}

func TestExpandTemplates_CollapsedIntoGap(t *testing.T) {
	rotation := chicagoRotation()
	// both boundaries fall inside the 02:00-03:00 gap
	templates := []*domain.PeriodTemplate{
		{ID: "tpl-1", RotationID: rotation.ID, DayOfWeek: 6, StartTime: "02:00", EndTime: "02:45", IsActive: true},
	}

	winStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	winEnd := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	proposals, err := ExpandTemplates(context.Background(), rotation, templates, winStart, winEnd, "")
	require.NoError(t, err)
	require.Empty(t, proposals)
}

func TestExpandTemplates_FallBackOverlap(t *testing.T) {
	rotation := chicagoRotation()
	// 2024-11-03 01:00 Chicago happens twice; the earlier instant wins
	templates := []*domain.PeriodTemplate{
		{ID: "tpl-1", RotationID: rotation.ID, DayOfWeek: 6, StartTime: "01:00", EndTime: "02:00", IsActive: true},
	}

	winStart := time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)
	winEnd := time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC)

	proposals, err := ExpandTemplates(context.Background(), rotation, templates, winStart, winEnd, "")
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	// 01:00 CDT = 06:00 UTC; 02:00 CST = 08:00 UTC
	require.True(t, proposals[0].StartUTC.Equal(time.Date(2024, 11, 3, 6, 0, 0, 0, time.UTC)))
	require.True(t, proposals[0].EndUTC.Equal(time.Date(2024, 11, 3, 8, 0, 0, 0, time.UTC)))
}

func TestExpandTemplates_Validation(t *testing.T) {
	rotation := chicagoRotation()
	winStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	winEnd := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	_, err := ExpandTemplates(context.Background(), rotation, nil, winEnd, winStart, "")
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = ExpandTemplates(context.Background(), rotation, []*domain.PeriodTemplate{
		{ID: "tpl-1", DayOfWeek: 0, StartTime: "17:00", EndTime: "09:00", IsActive: true},
	}, winStart, winEnd, "")
	require.ErrorIs(t, err, ErrInvalidTemplate)

	_, err = ExpandTemplates(context.Background(), rotation, []*domain.PeriodTemplate{
		{ID: "tpl-1", DayOfWeek: 0, StartTime: "9am", EndTime: "17:00", IsActive: true},
	}, winStart, winEnd, "")
	require.ErrorIs(t, err, ErrInvalidTemplate)

	// inactive templates are skipped, not rejected
	proposals, err := ExpandTemplates(context.Background(), rotation, []*domain.PeriodTemplate{
		{ID: "tpl-1", DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", IsActive: false},
	}, winStart, winEnd, "")
	require.NoError(t, err)
	require.Empty(t, proposals)
}

func TestExpandTemplates_NoTemplates(t *testing.T) {
	rotation := chicagoRotation()

	proposals, err := ExpandTemplates(context.Background(), rotation, nil,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	require.Empty(t, proposals)
}

func TestSliceRange_AnchorAlignment(t *testing.T) {
	rotation := chicagoRotation()

	winStart := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	winEnd := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)

	proposals, err := SliceRange(context.Background(), rotation, winStart, winEnd, "")
	require.NoError(t, err)
	require.Len(t, proposals, 3)

	require.True(t, proposals[0].StartUTC.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
	require.True(t, proposals[0].EndUTC.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.True(t, proposals[2].StartUTC.Equal(time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)))
	require.True(t, proposals[2].EndUTC.Equal(time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)))

	// back-to-back, no gaps
	for i := 1; i < len(proposals); i++ {
		require.True(t, proposals[i-1].EndUTC.Equal(proposals[i].StartUTC))
	}
}

func TestSliceRange_InvalidRange(t *testing.T) {
	rotation := chicagoRotation()

	at := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := SliceRange(context.Background(), rotation, at, at, "")
	require.ErrorIs(t, err, ErrInvalidRange)
}

package schedule

import (
	"sort"
	"time"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

// Snapshot is a read-committed view of everything the effective-schedule
// builder needs. The builder never mutates it and never touches storage,
// so it tolerates concurrent writes by simply reflecting what was read.
type Snapshot struct {
	Rotations   map[string]*domain.Rotation
	Periods     []*domain.Period
	Assignments map[string][]*domain.Assignment // keyed by period id
	Overrides   []*domain.Override
}

// BuildEffective flattens periods, assignments and overrides into the
// effective schedule for [winStart, winEnd).
//
// Overlapping periods are not deduplicated: each produces its own row and
// incident routing disambiguates with PickAt. Rows keep the full period
// boundaries even when the period only partially intersects the window.
// When several overrides hit the same role of one period, the one created
// last wins. Output is ordered by start instant, then rotation id, then
// period id.
func BuildEffective(snap Snapshot, winStart, winEnd time.Time) ([]domain.EffectiveAssignment, error) {
	if !winStart.Before(winEnd) {
		return nil, ErrInvalidRange
	}

	// Apply overrides in creation order so the last applied write sticks.
	overrides := make([]*domain.Override, len(snap.Overrides))
	copy(overrides, snap.Overrides)
	sort.Slice(overrides, func(i, j int) bool {
		if !overrides[i].CreatedAt.Equal(overrides[j].CreatedAt) {
			return overrides[i].CreatedAt.Before(overrides[j].CreatedAt)
		}
		return overrides[i].ID < overrides[j].ID
	})

	rows := make([]domain.EffectiveAssignment, 0, len(snap.Periods))
	for _, p := range snap.Periods {
		if !p.EndUTC.After(winStart) || !p.StartUTC.Before(winEnd) {
			continue
		}

		primary, secondary := Resolve(snap.Rotations[p.RotationID], snap.Assignments[p.ID])

		row := domain.EffectiveAssignment{
			PeriodID:        p.ID,
			RotationID:      p.RotationID,
			StartUTC:        p.StartUTC,
			EndUTC:          p.EndUTC,
			PrimaryUserID:   primary,
			SecondaryUserID: secondary,
		}

		for _, o := range overrides {
			if !appliesTo(o, p) {
				continue
			}
			replacement := o.ReplacementUserID
			applied := false
			if row.PrimaryUserID != nil && *row.PrimaryUserID == o.OriginalUserID {
				row.PrimaryUserID = &replacement
				applied = true
			}
			if row.SecondaryUserID != nil && *row.SecondaryUserID == o.OriginalUserID {
				row.SecondaryUserID = &replacement
				applied = true
			}
			// An override whose original user matches neither role has no
			// effect on this period.
			if applied {
				row.Overridden = true
				if o.Reason != nil {
					row.Notes = o.Reason
				}
			}
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].StartUTC.Equal(rows[j].StartUTC) {
			return rows[i].StartUTC.Before(rows[j].StartUTC)
		}
		if rows[i].RotationID != rows[j].RotationID {
			return rows[i].RotationID < rows[j].RotationID
		}
		return rows[i].PeriodID < rows[j].PeriodID
	})

	return rows, nil
}

// appliesTo reports whether the override's scope and time window reach the
// period. Scope is either the exact period or the period's rotation.
func appliesTo(o *domain.Override, p *domain.Period) bool {
	switch {
	case o.PeriodID != nil:
		if *o.PeriodID != p.ID {
			return false
		}
	case o.RotationID != nil:
		if *o.RotationID != p.RotationID {
			return false
		}
	default:
		return false
	}
	return o.StartUTC.Before(p.EndUTC) && o.EndUTC.After(p.StartUTC)
}

package schedule

import (
	"time"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

// PickAt selects the row authoritative at an instant: start <= at < end,
// and when overlapping periods qualify, the one with the latest start
// instant wins. Equal starts fall back to the larger period id so the
// choice stays deterministic. Returns nil when nothing covers the instant.
func PickAt(rows []domain.EffectiveAssignment, at time.Time) *domain.EffectiveAssignment {
	var best *domain.EffectiveAssignment
	for i := range rows {
		r := &rows[i]
		if r.StartUTC.After(at) || !r.EndUTC.After(at) {
			continue
		}
		if best == nil ||
			r.StartUTC.After(best.StartUTC) ||
			(r.StartUTC.Equal(best.StartUTC) && r.PeriodID > best.PeriodID) {
			best = r
		}
	}
	return best
}

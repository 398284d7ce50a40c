package schedule

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

// DefaultNamePattern is used when a generation request carries no pattern.
const DefaultNamePattern = "On-Call {start:%Y-%m-%d}"

// ProposedPeriod is a candidate coverage period produced by expansion or
// range slicing. Proposals are not persisted here; the caller submits them
// to the period store, which is idempotent by (rotation, start, end, name).
type ProposedPeriod struct {
	RotationID string    `json:"rotation_id"`
	TemplateID string    `json:"template_id,omitempty"`
	Name       string    `json:"name"`
	StartUTC   time.Time `json:"start_utc"`
	EndUTC     time.Time `json:"end_utc"`
}

var namePatternRe = regexp.MustCompile(`\{(start|end):([^}]+)\}`)

// formatName substitutes {start:FMT} and {end:FMT} placeholders with the
// strftime-formatted local boundary times.
func formatName(pattern string, start, end time.Time, loc *time.Location) string {
	return namePatternRe.ReplaceAllStringFunc(pattern, func(m string) string {
		sub := namePatternRe.FindStringSubmatch(m)
		t := start
		if sub[1] == "end" {
			t = end
		}
		return strftime.Format(sub[2], t.In(loc))
	})
}

// ExpandTemplates walks every calendar date in the rotation's time zone
// that the window touches and emits one proposal per matching active
// template occurrence. Proposals whose UTC end is at or before winStart,
// or whose UTC start is at or past winEnd, are excluded. Output is ordered
// by start instant, ties broken by template id.
func ExpandTemplates(ctx context.Context, rotation *domain.Rotation, templates []*domain.PeriodTemplate, winStart, winEnd time.Time, namePattern string) ([]ProposedPeriod, error) {
	if !winStart.Before(winEnd) {
		return nil, ErrInvalidRange
	}
	loc, err := time.LoadLocation(rotation.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("rotation %s: load time zone %q: %w", rotation.ID, rotation.TimeZone, err)
	}

	proposals := make([]ProposedPeriod, 0)
	for _, tpl := range templates {
		if !tpl.IsActive {
			continue
		}
		if tpl.DayOfWeek < 0 || tpl.DayOfWeek > 6 {
			return nil, fmt.Errorf("%w: day of week %d out of range", ErrInvalidTemplate, tpl.DayOfWeek)
		}
		startMin, err := ParseTimeOfDay(tpl.StartTime)
		if err != nil {
			return nil, err
		}
		endMin, err := ParseTimeOfDay(tpl.EndTime)
		if err != nil {
			return nil, err
		}
		if startMin >= endMin {
			return nil, fmt.Errorf("%w: start time %s is not before end time %s", ErrInvalidTemplate, tpl.StartTime, tpl.EndTime)
		}

		// An explicit request pattern wins; otherwise the template's own
		// name seeds a dated pattern.
		name := namePattern
		if name == "" {
			if tpl.Name != nil && *tpl.Name != "" {
				name = *tpl.Name + " {start:%Y-%m-%d}"
			} else {
				name = DefaultNamePattern
			}
		}

		// Scan one extra day on each side so local dates whose occurrences
		// straddle the window boundary are still considered.
		first := winStart.In(loc)
		last := winEnd.In(loc)
		day := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		stop := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

		for ; !day.After(stop); day = day.AddDate(0, 0, 1) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if day.Weekday() != weekdayOf(tpl.DayOfWeek) {
				continue
			}

			start := ResolveLocal(loc, day.Year(), day.Month(), day.Day(), startMin/60, startMin%60)
			end := ResolveLocal(loc, day.Year(), day.Month(), day.Day(), endMin/60, endMin%60)
			if !start.Before(end) {
				// Both boundaries collapsed into the same DST gap.
				continue
			}
			if !end.After(winStart) || !start.Before(winEnd) {
				continue
			}

			proposals = append(proposals, ProposedPeriod{
				RotationID: rotation.ID,
				TemplateID: tpl.ID,
				Name:       formatName(name, start, end, loc),
				StartUTC:   start,
				EndUTC:     end,
			})
		}
	}

	sort.Slice(proposals, func(i, j int) bool {
		if !proposals[i].StartUTC.Equal(proposals[j].StartUTC) {
			return proposals[i].StartUTC.Before(proposals[j].StartUTC)
		}
		return proposals[i].TemplateID < proposals[j].TemplateID
	})

	return proposals, nil
}

// SliceRange cuts an explicit UTC window into consecutive periods of the
// rotation's nominal length, aligned to its anchor start instant. Periods
// partially inside the window keep their full boundaries.
func SliceRange(ctx context.Context, rotation *domain.Rotation, winStart, winEnd time.Time, namePattern string) ([]ProposedPeriod, error) {
	if !winStart.Before(winEnd) {
		return nil, ErrInvalidRange
	}
	loc, err := time.LoadLocation(rotation.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("rotation %s: load time zone %q: %w", rotation.ID, rotation.TimeZone, err)
	}
	if namePattern == "" {
		namePattern = DefaultNamePattern
	}

	length := rotation.PeriodLengthDays
	if length <= 0 {
		length = 7
	}
	step := time.Duration(length) * 24 * time.Hour

	// Align the first candidate to the latest anchor multiple at or before
	// the window start.
	start := rotation.StartDateUTC
	if offset := winStart.Sub(start); offset > 0 {
		start = start.Add(offset / step * step)
	}

	proposals := make([]ProposedPeriod, 0)
	for ; start.Before(winEnd); start = start.Add(step) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start.Add(step)
		if !end.After(winStart) {
			continue
		}
		proposals = append(proposals, ProposedPeriod{
			RotationID: rotation.ID,
			Name:       formatName(namePattern, start, end, loc),
			StartUTC:   start.UTC(),
			EndUTC:     end.UTC(),
		})
	}

	return proposals, nil
}

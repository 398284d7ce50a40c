package schedule

import (
	"fmt"
	"time"
)

// ParseTimeOfDay parses an HH:mm wall-clock time into minutes since
// midnight. Malformed input is reported as ErrInvalidTemplate.
func ParseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: time of day %q is not HH:mm", ErrInvalidTemplate, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// weekdayOf converts a template day-of-week (0=Monday .. 6=Sunday) to the
// stdlib convention (0=Sunday).
func weekdayOf(dayOfWeek int32) time.Weekday {
	return time.Weekday((dayOfWeek + 1) % 7)
}

// ResolveLocal maps a wall-clock time in loc to a UTC instant with an
// explicit DST policy: a time inside a spring-forward gap resolves to the
// first valid instant after the gap, and an ambiguous fall-back time
// resolves to the earlier UTC instant.
func ResolveLocal(loc *time.Location, year int, month time.Month, day, hour, min int) time.Time {
	// The wall time read as if it were UTC. Offsetting it by each zone
	// offset in effect around the target yields every candidate instant.
	wall := time.Date(year, month, day, hour, min, 0, 0, time.UTC)

	seen := make(map[int]bool)
	var candidates []time.Time
	for _, probe := range []time.Time{wall.Add(-30 * time.Hour), wall, wall.Add(30 * time.Hour)} {
		_, offset := probe.In(loc).Zone()
		if seen[offset] {
			continue
		}
		seen[offset] = true

		cand := wall.Add(-time.Duration(offset) * time.Second)
		l := cand.In(loc)
		if l.Year() == year && l.Month() == month && l.Day() == day && l.Hour() == hour && l.Minute() == min {
			candidates = append(candidates, cand)
		}
	}

	if len(candidates) == 0 {
		// No offset produces this wall time: it fell into a gap.
		return firstInstantAfterGap(loc, wall)
	}

	earliest := candidates[0]
	for _, c := range candidates[1:] {
		if c.Before(earliest) {
			earliest = c
		}
	}
	return earliest.UTC()
}

// firstInstantAfterGap finds the transition instant that swallowed the wall
// time, i.e. the first instant whose local wall clock is at or past it.
// Binary search over a window wide enough to cover any UTC offset.
func firstInstantAfterGap(loc *time.Location, wall time.Time) time.Time {
	target := wallKey(wall)
	lo := wall.Add(-30 * time.Hour)
	hi := wall.Add(30 * time.Hour)
	for hi.Sub(lo) > time.Second {
		mid := lo.Add(hi.Sub(lo) / 2)
		if wallKey(mid.In(loc)) >= target {
			hi = mid
		} else {
			lo = mid
		}
	}
	// Transitions sit on whole seconds, so truncation lands exactly on one.
	return hi.Truncate(time.Second).UTC()
}

// wallKey orders wall-clock readings at minute precision.
func wallKey(t time.Time) int64 {
	return int64(t.Year())*1e8 + int64(t.Month())*1e6 + int64(t.Day())*1e4 + int64(t.Hour())*1e2 + int64(t.Minute())
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

// parseScheduleQuery reads the shared window query parameters: start_utc
// and end_utc as RFC 3339 timestamps, plus an optional rotation_id filter.
func parseScheduleQuery(r *http.Request) (*string, time.Time, time.Time, error) {
	q := r.URL.Query()

	winStart, err := time.Parse(time.RFC3339, q.Get("start_utc"))
	if err != nil {
		return nil, time.Time{}, time.Time{}, errors.New("start_utc must be an RFC 3339 timestamp")
	}
	winEnd, err := time.Parse(time.RFC3339, q.Get("end_utc"))
	if err != nil {
		return nil, time.Time{}, time.Time{}, errors.New("end_utc must be an RFC 3339 timestamp")
	}
	if !winStart.Before(winEnd) {
		return nil, time.Time{}, time.Time{}, errors.New("start_utc must be before end_utc")
	}

	var rotationID *string
	if v := q.Get("rotation_id"); v != "" {
		rotationID = &v
	}

	return rotationID, winStart, winEnd, nil
}

// buildSnapshot loads everything the schedule computation needs for a
// window in one place, so the computation itself never touches the
// database.
func (h *Handler) buildSnapshot(rotationID *string, winStart, winEnd time.Time) (schedule.Snapshot, error) {
	snap := schedule.Snapshot{
		Rotations: make(map[string]*domain.Rotation),
	}

	periods, err := h.repository.GetPeriodsOverlapping(rotationID, winStart, winEnd)
	if err != nil {
		return snap, err
	}
	snap.Periods = periods

	periodIDs := make([]string, 0, len(periods))
	for _, p := range periods {
		periodIDs = append(periodIDs, p.ID)
		if _, ok := snap.Rotations[p.RotationID]; !ok {
			rotation, err := h.repository.GetRotationByID(p.RotationID)
			if err != nil {
				return snap, err
			}
			snap.Rotations[p.RotationID] = rotation
		}
	}

	if len(periodIDs) > 0 {
		assignments, err := h.repository.GetAssignmentsForPeriods(periodIDs)
		if err != nil {
			return snap, err
		}
		snap.Assignments = assignments
	}

	// Rows keep their full period boundaries even when only partially
	// inside the window, and an override anywhere in those boundaries
	// still applies. Fetch overrides against the envelope of the loaded
	// periods, not the query window.
	if len(periods) > 0 {
		envStart := periods[0].StartUTC
		envEnd := periods[0].EndUTC
		for _, p := range periods[1:] {
			if p.StartUTC.Before(envStart) {
				envStart = p.StartUTC
			}
			if p.EndUTC.After(envEnd) {
				envEnd = p.EndUTC
			}
		}

		overrides, err := h.repository.GetOverridesIntersecting(rotationID, envStart, envEnd)
		if err != nil {
			return snap, err
		}
		snap.Overrides = overrides
	}

	return snap, nil
}

func (h *Handler) GetEffectiveSchedule(w http.ResponseWriter, r *http.Request) {
	rotationID, winStart, winEnd, err := parseScheduleQuery(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	snap, err := h.buildSnapshot(rotationID, winStart, winEnd)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	rows, err := schedule.BuildEffective(snap, winStart, winEnd)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidRange):
			h.errorResponse(w, r, "start_utc must be before end_utc")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "", rows)
}

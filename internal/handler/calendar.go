package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

// CalendarSync pushes all periods in a window to the external calendar
// service and records the event IDs it assigns. Failures of the calendar
// service never corrupt schedule data; periods keep their previous event
// IDs and the sync can be retried.
func (h *Handler) CalendarSync(w http.ResponseWriter, r *http.Request) {
	if !h.calendarClient.Enabled() {
		h.errorResponse(w, r, "calendar sync is not configured")
		return
	}

	var req struct {
		RotationID  *string   `json:"rotation_id"`
		WindowStart time.Time `json:"window_start" validate:"required"`
		WindowEnd   time.Time `json:"window_end" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if !req.WindowStart.Before(req.WindowEnd) {
		h.errorResponse(w, r, "window_start must be before window_end")
		return
	}

	periods, err := h.repository.GetPeriodsOverlapping(req.RotationID, req.WindowStart, req.WindowEnd)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	results, err := h.calendarClient.Sync(r.Context(), periods)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrDownstreamUnavailable):
			h.errorResponse(w, r, "calendar service is unavailable, please retry later")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	for _, result := range results {
		eventID := result.EventID
		if err := h.repository.SetPeriodCalendarEventID(result.PeriodID, &eventID); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "calendar synced", results)
}

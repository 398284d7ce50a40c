package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

func (h *Handler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// without a window the listing is by rotation
	if q.Get("start_utc") == "" && q.Get("end_utc") == "" {
		rotationID := q.Get("rotation_id")
		if rotationID == "" {
			h.errorResponse(w, r, "rotation_id or a start_utc/end_utc window is required")
			return
		}

		periods, err := h.repository.GetPeriodsByRotationID(rotationID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		h.successResponse(w, r, "", periods)
		return
	}

	rotationID, winStart, winEnd, err := parseScheduleQuery(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	periods, err := h.repository.GetPeriodsOverlapping(rotationID, winStart, winEnd)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", periods)
}

func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RotationID string    `json:"rotation_id" validate:"required"`
		Name       string    `json:"name" validate:"required"`
		StartUTC   time.Time `json:"start_utc" validate:"required"`
		EndUTC     time.Time `json:"end_utc" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, err := h.repository.GetRotationByID(req.RotationID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "rotation not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	period := &domain.Period{
		RotationID: req.RotationID,
		Name:       req.Name,
		StartUTC:   req.StartUTC,
		EndUTC:     req.EndUTC,
	}

	if err := h.repository.CreatePeriod(period); err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidRange):
			h.errorResponse(w, r, "start_utc must be before end_utc")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "period created", period)
}

func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(PeriodCtx).(*domain.Period)
	h.successResponse(w, r, "", period)
}

func (h *Handler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(PeriodCtx).(*domain.Period)

	var req struct {
		Name     *string    `json:"name"`
		StartUTC *time.Time `json:"start_utc"`
		EndUTC   *time.Time `json:"end_utc"`
		IsLocked *bool      `json:"is_locked"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		period.Name = *req.Name
	}
	if req.StartUTC != nil {
		period.StartUTC = *req.StartUTC
	}
	if req.EndUTC != nil {
		period.EndUTC = *req.EndUTC
	}
	if req.IsLocked != nil {
		period.IsLocked = *req.IsLocked
	}

	if err := h.repository.UpdatePeriod(period); err != nil {
		switch {
		case errors.Is(err, schedule.ErrPeriodLocked):
			h.errorResponse(w, r, "period is locked, boundaries cannot change")
		case errors.Is(err, schedule.ErrInvalidRange):
			h.errorResponse(w, r, "start_utc must be before end_utc")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "period has been modified concurrently, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "period updated", period)
}

func (h *Handler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(PeriodCtx).(*domain.Period)

	if err := h.repository.DeletePeriod(period.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "period not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "period deleted", nil)
}

func (h *Handler) GetPeriodAssignments(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(PeriodCtx).(*domain.Period)

	assignments, err := h.repository.GetAssignmentsByPeriodID(period.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", assignments)
}

func (h *Handler) SetPeriodAssignment(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(PeriodCtx).(*domain.Period)

	role, ok := parseRole(chi.URLParam(r, "role"))
	if !ok {
		h.errorResponse(w, r, "role must be primary or secondary")
		return
	}

	var req struct {
		UserID string `json:"user_id" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, err := h.repository.GetUserByID(req.UserID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "user not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	assignment := &domain.Assignment{
		PeriodID: period.ID,
		UserID:   req.UserID,
		Role:     role,
	}

	if err := h.repository.UpsertAssignment(assignment); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "assignment set", assignment)
}

func (h *Handler) ClearPeriodAssignment(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(PeriodCtx).(*domain.Period)

	role, ok := parseRole(chi.URLParam(r, "role"))
	if !ok {
		h.errorResponse(w, r, "role must be primary or secondary")
		return
	}

	if err := h.repository.DeleteAssignment(period.ID, role); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "assignment not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "assignment cleared", nil)
}

func parseRole(s string) (domain.AssignmentRole, bool) {
	switch domain.AssignmentRole(s) {
	case domain.RolePrimary:
		return domain.RolePrimary, true
	case domain.RoleSecondary:
		return domain.RoleSecondary, true
	default:
		return "", false
	}
}

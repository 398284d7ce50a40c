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

func (h *Handler) GetAllOverrides(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.repository.GetAllOverrides()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", overrides)
}

func (h *Handler) CreateOverride(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeriodID          *string   `json:"period_id"`
		RotationID        *string   `json:"rotation_id"`
		OriginalUserID    string    `json:"original_user_id" validate:"required"`
		ReplacementUserID string    `json:"replacement_user_id" validate:"required"`
		StartUTC          time.Time `json:"start_utc" validate:"required"`
		EndUTC            time.Time `json:"end_utc" validate:"required"`
		Reason            *string   `json:"reason"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if (req.PeriodID == nil) == (req.RotationID == nil) {
		h.errorResponse(w, r, "exactly one of period_id and rotation_id must be set")
		return
	}

	if req.PeriodID != nil {
		if _, err := h.repository.GetPeriodByID(*req.PeriodID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "period not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	} else {
		if _, err := h.repository.GetRotationByID(*req.RotationID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "rotation not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	override := &domain.Override{
		PeriodID:          req.PeriodID,
		RotationID:        req.RotationID,
		OriginalUserID:    req.OriginalUserID,
		ReplacementUserID: req.ReplacementUserID,
		StartUTC:          req.StartUTC,
		EndUTC:            req.EndUTC,
		Reason:            req.Reason,
	}

	if err := h.repository.CreateOverride(override); err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidRange):
			h.errorResponse(w, r, "start_utc must be before end_utc")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "override created", override)
}

func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	overrideID := chi.URLParam(r, "id")

	if err := h.repository.DeleteOverride(overrideID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "override not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "override deleted", nil)
}

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

func (h *Handler) GetAllRotations(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if v := r.URL.Query().Get("active_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.errorResponse(w, r, "invalid active_only parameter")
			return
		}
		activeOnly = parsed
	}

	rotations, err := h.repository.GetAllRotations(activeOnly)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", rotations)
}

func (h *Handler) CreateRotation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                   string    `json:"name" validate:"required"`
		Description            string    `json:"description"`
		TimeZone               string    `json:"time_zone" validate:"required,timezone"`
		PeriodLengthDays       int32     `json:"period_length_days" validate:"omitempty,min=1"`
		StartDateUTC           time.Time `json:"start_date_utc" validate:"required"`
		DefaultPrimaryUserID   *string   `json:"default_primary_user_id"`
		DefaultSecondaryUserID *string   `json:"default_secondary_user_id"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rotation := &domain.Rotation{
		Name:                   req.Name,
		Description:            req.Description,
		TimeZone:               req.TimeZone,
		PeriodLengthDays:       req.PeriodLengthDays,
		StartDateUTC:           req.StartDateUTC,
		DefaultPrimaryUserID:   req.DefaultPrimaryUserID,
		DefaultSecondaryUserID: req.DefaultSecondaryUserID,
	}
	if rotation.PeriodLengthDays == 0 {
		rotation.PeriodLengthDays = 7
	}

	if err := h.repository.CreateRotation(rotation); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "rotation created", rotation)
}

func (h *Handler) GetRotation(w http.ResponseWriter, r *http.Request) {
	rotation := r.Context().Value(RotationCtx).(*domain.Rotation)
	h.successResponse(w, r, "", rotation)
}

func (h *Handler) UpdateRotation(w http.ResponseWriter, r *http.Request) {
	rotation := r.Context().Value(RotationCtx).(*domain.Rotation)

	var req struct {
		Name                   *string `json:"name"`
		Description            *string `json:"description"`
		TimeZone               *string `json:"time_zone" validate:"omitempty,timezone"`
		PeriodLengthDays       *int32  `json:"period_length_days" validate:"omitempty,min=1"`
		IsActive               *bool   `json:"is_active"`
		DefaultPrimaryUserID   *string `json:"default_primary_user_id"`
		DefaultSecondaryUserID *string `json:"default_secondary_user_id"`
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
		rotation.Name = *req.Name
	}
	if req.Description != nil {
		rotation.Description = *req.Description
	}
	if req.TimeZone != nil {
		rotation.TimeZone = *req.TimeZone
	}
	if req.PeriodLengthDays != nil {
		rotation.PeriodLengthDays = *req.PeriodLengthDays
	}
	if req.IsActive != nil {
		rotation.IsActive = *req.IsActive
	}
	if req.DefaultPrimaryUserID != nil {
		rotation.DefaultPrimaryUserID = req.DefaultPrimaryUserID
	}
	if req.DefaultSecondaryUserID != nil {
		rotation.DefaultSecondaryUserID = req.DefaultSecondaryUserID
	}

	if err := h.repository.UpdateRotation(rotation); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "rotation has been modified concurrently, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "rotation updated", rotation)
}

func (h *Handler) DeleteRotation(w http.ResponseWriter, r *http.Request) {
	rotation := r.Context().Value(RotationCtx).(*domain.Rotation)

	if err := h.repository.DeleteRotation(rotation.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "rotation not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "rotation deleted", nil)
}

func (h *Handler) GetRotationMembers(w http.ResponseWriter, r *http.Request) {
	rotation := r.Context().Value(RotationCtx).(*domain.Rotation)

	members, err := h.repository.GetRotationMembers(rotation.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", members)
}

func (h *Handler) AddRotationMember(w http.ResponseWriter, r *http.Request) {
	rotation := r.Context().Value(RotationCtx).(*domain.Rotation)

	var req struct {
		UserID    string `json:"user_id" validate:"required"`
		SortOrder int32  `json:"sort_order"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	member := &domain.RotationMember{
		RotationID: rotation.ID,
		UserID:     req.UserID,
		SortOrder:  req.SortOrder,
	}

	if err := h.repository.AddRotationMember(member); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "member added", member)
}

func (h *Handler) RemoveRotationMember(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")

	if err := h.repository.RemoveRotationMember(memberID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "member not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "member removed", nil)
}

// GeneratePeriods slices [window_start, window_end) into back-to-back
// periods of the rotation's period length, aligned to its anchor date.
// Generation is idempotent: re-posting the same window reuses existing rows.
func (h *Handler) GeneratePeriods(w http.ResponseWriter, r *http.Request) {
	rotation := r.Context().Value(RotationCtx).(*domain.Rotation)

	var req struct {
		WindowStart time.Time `json:"window_start" validate:"required"`
		WindowEnd   time.Time `json:"window_end" validate:"required"`
		NamePattern string    `json:"name_pattern"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	proposed, err := schedule.SliceRange(r.Context(), rotation, req.WindowStart, req.WindowEnd, req.NamePattern)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidRange):
			h.errorResponse(w, r, "window_start must be before window_end")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	periods, err := h.persistProposed(proposed)
	if err != nil {
		h.generationFailed(w, r, periods, err)
		return
	}

	h.successResponse(w, r, "periods generated", periods)
}

// GeneratePeriodsFromTemplates expands the rotation's weekday templates
// over a window. The request may restrict expansion to specific template
// IDs or supply inline one-off templates instead.
func (h *Handler) GeneratePeriodsFromTemplates(w http.ResponseWriter, r *http.Request) {
	rotation := r.Context().Value(RotationCtx).(*domain.Rotation)

	var req struct {
		WindowStart     time.Time `json:"window_start" validate:"required"`
		WindowEnd       time.Time `json:"window_end" validate:"required"`
		NamePattern     string    `json:"name_pattern"`
		TemplateIDs     []string  `json:"template_ids"`
		InlineTemplates []struct {
			DayOfWeek int32   `json:"day_of_week" validate:"min=0,max=6"`
			StartTime string  `json:"start_time" validate:"required"`
			EndTime   string  `json:"end_time" validate:"required"`
			Name      *string `json:"name"`
		} `json:"inline_templates" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	var templates []*domain.PeriodTemplate

	switch {
	case len(req.InlineTemplates) > 0:
		for i, it := range req.InlineTemplates {
			templates = append(templates, &domain.PeriodTemplate{
				ID:         "inline-" + strconv.Itoa(i),
				RotationID: rotation.ID,
				DayOfWeek:  it.DayOfWeek,
				StartTime:  it.StartTime,
				EndTime:    it.EndTime,
				Name:       it.Name,
				IsActive:   true,
			})
		}
	default:
		stored, err := h.repository.GetPeriodTemplatesByRotationID(rotation.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		if len(req.TemplateIDs) > 0 {
			wanted := make(map[string]bool, len(req.TemplateIDs))
			for _, id := range req.TemplateIDs {
				wanted[id] = true
			}
			for _, tpl := range stored {
				if wanted[tpl.ID] {
					templates = append(templates, tpl)
				}
			}
			if len(templates) != len(req.TemplateIDs) {
				h.errorResponse(w, r, "unknown template id")
				return
			}
		} else {
			templates = stored
		}
	}

	proposed, err := schedule.ExpandTemplates(r.Context(), rotation, templates, req.WindowStart, req.WindowEnd, req.NamePattern)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidRange):
			h.errorResponse(w, r, "window_start must be before window_end")
		case errors.Is(err, schedule.ErrInvalidTemplate):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	periods, err := h.persistProposed(proposed)
	if err != nil {
		h.generationFailed(w, r, periods, err)
		return
	}

	h.successResponse(w, r, "periods generated", periods)
}

// persistProposed stores proposals one by one. On failure it returns the
// periods created before the failure alongside the error, so the caller
// can report partial progress.
func (h *Handler) persistProposed(proposed []schedule.ProposedPeriod) ([]*domain.Period, error) {
	periods := make([]*domain.Period, 0, len(proposed))

	for _, pp := range proposed {
		period := &domain.Period{
			RotationID: pp.RotationID,
			Name:       pp.Name,
			StartUTC:   pp.StartUTC,
			EndUTC:     pp.EndUTC,
		}
		if err := h.repository.CreatePeriod(period); err != nil {
			return periods, err
		}
		periods = append(periods, period)
	}

	return periods, nil
}

// generationFailed reports a batch that stopped partway. Creation is
// idempotent by natural key, so re-posting the same window resumes where
// the batch stopped.
func (h *Handler) generationFailed(w http.ResponseWriter, r *http.Request, created []*domain.Period, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "period generation stopped partway, re-posting the same window is safe",
		Data:    created,
	})
}

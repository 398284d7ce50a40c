package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

func (h *Handler) GetRotationTemplates(w http.ResponseWriter, r *http.Request) {
	rotation := r.Context().Value(RotationCtx).(*domain.Rotation)

	templates, err := h.repository.GetPeriodTemplatesByRotationID(rotation.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", templates)
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	rotation := r.Context().Value(RotationCtx).(*domain.Rotation)

	var req struct {
		DayOfWeek int32   `json:"day_of_week" validate:"min=0,max=6"`
		StartTime string  `json:"start_time" validate:"required"`
		EndTime   string  `json:"end_time" validate:"required"`
		Name      *string `json:"name"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := validateTemplateTimes(req.StartTime, req.EndTime); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	tpl := &domain.PeriodTemplate{
		RotationID: rotation.ID,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Name:       req.Name,
		IsActive:   true,
	}

	if err := h.repository.CreatePeriodTemplate(tpl); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "template created", tpl)
}

func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	tpl := r.Context().Value(TemplateCtx).(*domain.PeriodTemplate)

	var req struct {
		DayOfWeek *int32  `json:"day_of_week" validate:"omitempty,min=0,max=6"`
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
		Name      *string `json:"name"`
		IsActive  *bool   `json:"is_active"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.DayOfWeek != nil {
		tpl.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		tpl.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		tpl.EndTime = *req.EndTime
	}
	if req.Name != nil {
		tpl.Name = req.Name
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := validateTemplateTimes(tpl.StartTime, tpl.EndTime); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdatePeriodTemplate(tpl); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "template has been modified concurrently, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "template updated", tpl)
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	tpl := r.Context().Value(TemplateCtx).(*domain.PeriodTemplate)

	if err := h.repository.DeletePeriodTemplate(tpl.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "template not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "template deleted", nil)
}

// validateTemplateTimes rejects malformed or midnight-crossing wall times
// before they reach the expander.
func validateTemplateTimes(startTime, endTime string) error {
	startMin, err := schedule.ParseTimeOfDay(startTime)
	if err != nil {
		return errors.New("start_time must be HH:mm")
	}
	endMin, err := schedule.ParseTimeOfDay(endTime)
	if err != nil {
		return errors.New("end_time must be HH:mm")
	}
	if startMin >= endMin {
		return errors.New("start_time must be before end_time")
	}
	return nil
}

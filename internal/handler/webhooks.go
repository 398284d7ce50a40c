package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/utils"
)

func (h *Handler) GetAllWebhookEndpoints(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if v := r.URL.Query().Get("active_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.errorResponse(w, r, "invalid active_only parameter")
			return
		}
		activeOnly = parsed
	}

	endpoints, err := h.repository.GetAllWebhookEndpoints(activeOnly)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", endpoints)
}

func (h *Handler) CreateWebhookEndpoint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name" validate:"required"`
		URL         string  `json:"url" validate:"required,url"`
		Method      string  `json:"method" validate:"required,oneof=GET POST"`
		EventFilter *string `json:"event_filter"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	secret := utils.GenerateRandomSecret(32)

	endpoint := &domain.WebhookEndpoint{
		Name:         req.Name,
		URL:          req.URL,
		Method:       req.Method,
		SharedSecret: &secret,
		IsActive:     true,
		EventFilter:  req.EventFilter,
	}

	if err := h.repository.CreateWebhookEndpoint(endpoint); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "webhook endpoint created", endpoint)
}

func (h *Handler) UpdateWebhookEndpoint(w http.ResponseWriter, r *http.Request) {
	endpointID := chi.URLParam(r, "id")

	endpoint, err := h.repository.GetWebhookEndpointByID(endpointID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "webhook endpoint not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	var req struct {
		Name        *string `json:"name"`
		URL         *string `json:"url" validate:"omitempty,url"`
		Method      *string `json:"method" validate:"omitempty,oneof=GET POST"`
		IsActive    *bool   `json:"is_active"`
		EventFilter *string `json:"event_filter"`
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
		endpoint.Name = *req.Name
	}
	if req.URL != nil {
		endpoint.URL = *req.URL
	}
	if req.Method != nil {
		endpoint.Method = *req.Method
	}
	if req.IsActive != nil {
		endpoint.IsActive = *req.IsActive
	}
	if req.EventFilter != nil {
		endpoint.EventFilter = req.EventFilter
	}

	if err := h.repository.UpdateWebhookEndpoint(endpoint); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "webhook endpoint has been modified concurrently, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "webhook endpoint updated", endpoint)
}

func (h *Handler) DeleteWebhookEndpoint(w http.ResponseWriter, r *http.Request) {
	endpointID := chi.URLParam(r, "id")

	if err := h.repository.DeleteWebhookEndpoint(endpointID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "webhook endpoint not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "webhook endpoint deleted", nil)
}

func (h *Handler) GetAllIncomingRegistrations(w http.ResponseWriter, r *http.Request) {
	registrations, err := h.repository.GetAllIncomingRegistrations()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", registrations)
}

func (h *Handler) CreateIncomingRegistration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	secret := utils.GenerateRandomSecret(32)

	registration := &domain.IncomingRegistration{
		Name:         req.Name,
		SharedSecret: &secret,
		IsActive:     true,
	}

	if err := h.repository.CreateIncomingRegistration(registration); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "incoming registration created", registration)
}

func (h *Handler) DeleteIncomingRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID := chi.URLParam(r, "id")

	if err := h.repository.DeleteIncomingRegistration(registrationID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "incoming registration not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "incoming registration deleted", nil)
}

func (h *Handler) GetAllAlertRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.repository.GetAllAlertRules()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", rules)
}

func (h *Handler) CreateAlertRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                   string  `json:"name" validate:"required"`
		TriggerType            string  `json:"trigger_type" validate:"required,oneof=incoming_webhook"`
		IncomingRegistrationID *string `json:"incoming_registration_id"`
		EventFilter            *string `json:"event_filter"`
		ActionType             string  `json:"action_type" validate:"required,oneof=webhook"`
		EndpointID             *string `json:"endpoint_id"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.IncomingRegistrationID != nil {
		if _, err := h.repository.GetIncomingRegistrationByID(*req.IncomingRegistrationID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "incoming registration not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}
	if req.EndpointID != nil {
		if _, err := h.repository.GetWebhookEndpointByID(*req.EndpointID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "webhook endpoint not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	rule := &domain.AlertRule{
		Name:                   req.Name,
		IsActive:               true,
		TriggerType:            req.TriggerType,
		IncomingRegistrationID: req.IncomingRegistrationID,
		EventFilter:            req.EventFilter,
		ActionType:             req.ActionType,
		EndpointID:             req.EndpointID,
	}

	if err := h.repository.CreateAlertRule(rule); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "alert rule created", rule)
}

func (h *Handler) UpdateAlertRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	rule, err := h.repository.GetAlertRuleByID(ruleID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "alert rule not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	var req struct {
		Name        *string `json:"name"`
		IsActive    *bool   `json:"is_active"`
		EventFilter *string `json:"event_filter"`
		EndpointID  *string `json:"endpoint_id"`
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
		rule.Name = *req.Name
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.EventFilter != nil {
		rule.EventFilter = req.EventFilter
	}
	if req.EndpointID != nil {
		rule.EndpointID = req.EndpointID
	}

	if err := h.repository.UpdateAlertRule(rule); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "alert rule has been modified concurrently, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "alert rule updated", rule)
}

func (h *Handler) DeleteAlertRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	if err := h.repository.DeleteAlertRule(ruleID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "alert rule not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "alert rule deleted", nil)
}

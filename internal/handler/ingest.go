package handler

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

// Ingest receives alerts from external monitoring systems. The caller
// authenticates with the registration's shared secret; matching active
// alert rules each open an incident against the requested rotation.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	registrationID := chi.URLParam(r, "registrationID")

	registration, err := h.repository.GetIncomingRegistrationByID(registrationID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "unknown registration")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !registration.IsActive {
		h.errorResponse(w, r, "registration is inactive")
		return
	}

	secret := r.Header.Get("X-Webhook-Secret")
	if registration.SharedSecret == nil ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(*registration.SharedSecret)) != 1 {
		h.errorResponse(w, r, "wrong shared secret")
		return
	}

	var req struct {
		Event      string     `json:"event" validate:"required"`
		Title      string     `json:"title" validate:"required"`
		RotationID string     `json:"rotation_id" validate:"required"`
		At         *time.Time `json:"at"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rotation, err := h.repository.GetRotationByID(req.RotationID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "rotation not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	rules, err := h.repository.GetActiveAlertRulesByRegistrationID(registration.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	at := time.Now().UTC()
	if req.At != nil {
		at = req.At.UTC()
	}

	incidents := make([]*domain.Incident, 0, len(rules))
	for _, rule := range rules {
		if rule.EventFilter != nil && *rule.EventFilter != req.Event {
			continue
		}

		incident, err := h.openIncident(rotation, req.Title, at, nil)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		incidents = append(incidents, incident)
	}

	h.successResponse(w, r, "alert processed", incidents)
}

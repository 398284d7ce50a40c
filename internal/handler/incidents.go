package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
)

func (h *Handler) GetAllIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.repository.GetAllIncidents()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", incidents)
}

func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title          string     `json:"title" validate:"required"`
		RotationID     string     `json:"rotation_id" validate:"required"`
		AssignedUserID *string    `json:"assigned_user_id"`
		At             *time.Time `json:"at"`
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

	at := time.Now().UTC()
	if req.At != nil {
		at = req.At.UTC()
	}

	// an explicit assignee skips on-call routing
	if req.AssignedUserID != nil {
		if _, err := h.repository.GetUserByID(*req.AssignedUserID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "user not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	incident, err := h.openIncident(rotation, req.Title, at, req.AssignedUserID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "incident created", incident)
}

// openIncident routes an incident at the given instant (unless an explicit
// assignee is given), persists it and fans out the created event plus the
// assignee notification.
func (h *Handler) openIncident(rotation *domain.Rotation, title string, at time.Time, assignedUserID *string) (*domain.Incident, error) {
	if assignedUserID == nil {
		routed, err := h.routeIncident(rotation.ID, at)
		if err != nil {
			return nil, err
		}
		assignedUserID = routed
	}

	incident := &domain.Incident{
		Title:          title,
		RotationID:     rotation.ID,
		AssignedUserID: assignedUserID,
	}

	if err := h.repository.CreateIncident(incident); err != nil {
		return nil, err
	}

	if err := h.publishIncidentEvent(domain.EventIncidentCreated, incident); err != nil {
		return nil, err
	}

	if assignedUserID != nil {
		if err := h.notifyAssignedUser(incident, rotation, *assignedUserID); err != nil {
			return nil, err
		}
	}

	return incident, nil
}

func (h *Handler) ResolveIncident(w http.ResponseWriter, r *http.Request) {
	incidentID := chi.URLParam(r, "id")

	incident, err := h.repository.ResolveIncident(incidentID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "incident not found or already resolved")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.publishIncidentEvent(domain.EventIncidentResolved, incident); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "incident resolved", incident)
}

// routeIncident finds the effective primary for a rotation at a given
// instant. Returns nil when the instant is uncovered or the covering
// period has no primary; the secondary is never substituted.
func (h *Handler) routeIncident(rotationID string, at time.Time) (*string, error) {
	snap, err := h.buildSnapshot(&rotationID, at, at.Add(time.Nanosecond))
	if err != nil {
		return nil, err
	}

	rows, err := schedule.BuildEffective(snap, at, at.Add(time.Nanosecond))
	if err != nil {
		return nil, err
	}

	row := schedule.PickAt(rows, at)
	if row == nil {
		return nil, nil
	}

	return row.PrimaryUserID, nil
}

func (h *Handler) publishIncidentEvent(eventType string, incident *domain.Incident) error {
	event := domain.IncidentEvent{
		Type:       eventType,
		Incident:   *incident,
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.publishChannel.PublishWithContext(
		ctx,
		"",
		"incident_events",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (h *Handler) notifyAssignedUser(incident *domain.Incident, rotation *domain.Rotation, userID string) error {
	user, err := h.repository.GetUserByID(userID)
	if err != nil {
		return err
	}

	mailMessage := domain.MailMessage{
		Type: "incident_assigned",
		To:   user.Email,
		Data: domain.IncidentAssignedMailData{
			DisplayName:  user.DisplayName,
			IncidentID:   incident.ID,
			Title:        incident.Title,
			RotationName: rotation.Name,
		},
	}

	body, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.publishChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

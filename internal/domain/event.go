package domain

import "time"

const (
	EventIncidentCreated  = "incident.created"
	EventIncidentResolved = "incident.resolved"
)

// IncidentEvent is the message published to the incident_events queue and
// consumed by the dispatch worker.
type IncidentEvent struct {
	Type       string    `json:"type"`
	Incident   Incident  `json:"incident"`
	OccurredAt time.Time `json:"occurred_at"`
}

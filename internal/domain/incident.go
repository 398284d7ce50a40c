package domain

import "time"

type Incident struct {
	ID             string     `json:"incident_id"`
	Title          string     `json:"title"`
	RotationID     string     `json:"rotation_id"`
	AssignedUserID *string    `json:"assigned_user_id"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
}

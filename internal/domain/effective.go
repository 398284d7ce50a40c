package domain

import "time"

// EffectiveAssignment is a derived row of the effective schedule: one period
// with its responders resolved and overrides applied. Never persisted.
type EffectiveAssignment struct {
	PeriodID        string    `json:"period_id"`
	RotationID      string    `json:"rotation_id"`
	StartUTC        time.Time `json:"start_utc"`
	EndUTC          time.Time `json:"end_utc"`
	PrimaryUserID   *string   `json:"primary_user_id"`
	SecondaryUserID *string   `json:"secondary_user_id"`
	Overridden      bool      `json:"overridden"`
	Notes           *string   `json:"notes"`
}

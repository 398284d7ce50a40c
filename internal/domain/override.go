package domain

import "time"

// Override substitutes ReplacementUserID for OriginalUserID inside
// [StartUTC, EndUTC). Exactly one of PeriodID and RotationID is set.
// Overrides are immutable after creation; edits are delete + recreate.
type Override struct {
	ID                string    `json:"override_id"`
	PeriodID          *string   `json:"period_id"`
	RotationID        *string   `json:"rotation_id"`
	OriginalUserID    string    `json:"original_user_id"`
	ReplacementUserID string    `json:"replacement_user_id"`
	StartUTC          time.Time `json:"start_utc"`
	EndUTC            time.Time `json:"end_utc"`
	Reason            *string   `json:"reason"`
	CreatedAt         time.Time `json:"created_at"`
}

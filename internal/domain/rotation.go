package domain

import "time"

type Rotation struct {
	ID                     string    `json:"rotation_id"`
	Name                   string    `json:"name"`
	Description            string    `json:"description"`
	TimeZone               string    `json:"time_zone"` // IANA zone, used for template expansion and display only
	PeriodLengthDays       int32     `json:"period_length_days"`
	StartDateUTC           time.Time `json:"start_date_utc"`
	IsActive               bool      `json:"is_active"`
	DefaultPrimaryUserID   *string   `json:"default_primary_user_id"`
	DefaultSecondaryUserID *string   `json:"default_secondary_user_id"`
	CreatedAt              time.Time `json:"created_at"`
	Version                int32     `json:"-"`
}

// RotationMember is advisory roster metadata. Assignments are not required
// to reference members (see Assignment).
type RotationMember struct {
	ID         string `json:"rotation_member_id"`
	RotationID string `json:"rotation_id"`
	UserID     string `json:"user_id"`
	SortOrder  int32  `json:"sort_order"`
	IsActive   bool   `json:"is_active"`
}

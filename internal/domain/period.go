package domain

import "time"

// PeriodTemplate is a weekday recurrence rule. DayOfWeek uses 0=Monday ..
// 6=Sunday; StartTime/EndTime are HH:mm wall-clock times in the owning
// rotation's time zone and must not cross midnight.
type PeriodTemplate struct {
	ID         string  `json:"template_id"`
	RotationID string  `json:"rotation_id"`
	DayOfWeek  int32   `json:"day_of_week"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Name       *string `json:"name"`
	IsActive   bool    `json:"is_active"`
	Version    int32   `json:"-"`
}

type Period struct {
	ID              string    `json:"period_id"`
	RotationID      string    `json:"rotation_id"`
	Name            string    `json:"name"`
	StartUTC        time.Time `json:"start_utc"`
	EndUTC          time.Time `json:"end_utc"`
	IsLocked        bool      `json:"is_locked"`
	CalendarEventID *string   `json:"calendar_event_id"`
	CreatedAt       time.Time `json:"created_at"`
	Version         int32     `json:"-"`
}

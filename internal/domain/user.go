package domain

import "time"

type User struct {
	ID           string    `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	TimeZone     *string   `json:"time_zone"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	Version      int32     `json:"-"`
}

package domain

type AssignmentRole string

const (
	RolePrimary   AssignmentRole = "primary"
	RoleSecondary AssignmentRole = "secondary"
)

// Assignment pins a responder to a period for one role. At most one
// assignment exists per (period, role). The user does not have to be a
// rotation member; the roster is advisory.
type Assignment struct {
	ID       string         `json:"assignment_id"`
	PeriodID string         `json:"period_id"`
	UserID   string         `json:"user_id"`
	Role     AssignmentRole `json:"role"`
}

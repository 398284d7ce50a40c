package schedule

import "github.com/oncallhq/oncall-manager/backend/internal/domain"

// Resolve determines the base responders of a period. An explicit
// assignment wins for its role; a role without one inherits the rotation
// default. Both roles resolving to nil is a valid state, not an error.
// Roster membership of the assigned user is deliberately not checked.
func Resolve(rotation *domain.Rotation, assignments []*domain.Assignment) (primary, secondary *string) {
	if rotation != nil {
		primary = rotation.DefaultPrimaryUserID
		secondary = rotation.DefaultSecondaryUserID
	}
	for _, a := range assignments {
		uid := a.UserID
		switch a.Role {
		case domain.RolePrimary:
			primary = &uid
		case domain.RoleSecondary:
			secondary = &uid
		}
	}
	return primary, secondary
}

package user

import "time"

type Role string

const (
	RoleWorker     Role = "worker"     // Submits own attendance
	RoleSupervisor Role = "supervisor" // Submits own and on-behalf attendance
	RoleManagement Role = "management" // Full reporting and adjudication access
	RoleAdmin      Role = "admin"      // Full access
)

// User is a read-mostly directory entry. The core never creates or edits
// users; it only resolves identities and enumerates active workers.
type User struct {
	ID              string
	UserCode        string
	Name            string
	Phone           string
	Email           *string
	PasswordHash    string
	Role            Role
	Designation     *string
	ProfileImageURL *string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanActForOthers reports whether the role may submit attendance on behalf of
// another worker.
func (r Role) CanActForOthers() bool {
	return r == RoleSupervisor || r == RoleManagement || r == RoleAdmin
}

// CanAdjudicate reports whether the role may approve or reject pending records.
func (r Role) CanAdjudicate() bool {
	return r == RoleAdmin || r == RoleManagement
}

// RolePriority is the reporting sort order: management first, then
// supervisors, then workers, then anything else.
func RolePriority(r Role) int {
	switch r {
	case RoleManagement:
		return 0
	case RoleSupervisor:
		return 1
	case RoleWorker:
		return 2
	default:
		return 3
	}
}

// IsValidRole reports whether s names a known role.
func IsValidRole(s string) bool {
	switch Role(s) {
	case RoleWorker, RoleSupervisor, RoleManagement, RoleAdmin:
		return true
	}
	return false
}

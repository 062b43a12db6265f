package domain

import "time"

// UserRole enumerates the campus roles a profile can hold. The role is
// fixed at registration; only admins may change it afterwards.
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleProfessor  UserRole = "professor"
	RoleTechnician UserRole = "technician"
	RoleAdmin      UserRole = "admin"
)

// UserRoles lists every valid role.
func UserRoles() []UserRole {
	return []UserRole{RoleStudent, RoleProfessor, RoleTechnician, RoleAdmin}
}

// ValidRole reports whether the value is a member of the role set.
func ValidRole(role UserRole) bool {
	switch role {
	case RoleStudent, RoleProfessor, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

// Profile is the domain model for anyone who signs in: submitters
// (students, professors), technicians, and administrators.
type Profile struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns the display name for history entries and dashboards.
func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// CanTriage reports whether the profile may work other people's tickets.
func (p *Profile) CanTriage() bool {
	return p.Role == RoleTechnician || p.Role == RoleAdmin
}

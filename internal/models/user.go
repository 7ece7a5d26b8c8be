package models

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// IsStaff reports whether the role may read attempts it does not own.
func (r UserRole) IsStaff() bool {
	return r == RoleTeacher || r == RoleAdmin
}

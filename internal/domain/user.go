package domain

import "strings"

// Role is the caller's role as carried in the access token.
type Role string

const (
	RoleLearner Role = "learner"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a token claim to a Role. Unknown values become learners.
func ParseRole(s string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleTeacher, RoleAdmin:
		return r
	default:
		return RoleLearner
	}
}

// IsStaff reports whether the role may author quizzes and see answer keys.
func (r Role) IsStaff() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// Viewer identifies who is calling an operation.
type Viewer struct {
	UserID string
	Role   Role
}

// IsStaff reports whether the viewer has a staff role.
func (v Viewer) IsStaff() bool {
	return v.Role.IsStaff()
}

package model

type Role string

const (
	// RoleUnassigned is the server default for accounts that were never
	// promoted to a student or instructor.
	RoleUnassigned Role = "USER"
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleUnassigned, RoleStudent, RoleInstructor:
		return true
	default:
		return false
	}
}

// ParseRole maps a raw role claim onto the closed set. Matching is exact and
// case-sensitive: "student" is not STUDENT. Unknown values yield
// RoleUnassigned and ok=false.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent:
		return RoleStudent, true
	case RoleInstructor:
		return RoleInstructor, true
	case RoleUnassigned:
		return RoleUnassigned, true
	default:
		return RoleUnassigned, false
	}
}

type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "LOCAL"
	AuthProviderGoogle AuthProvider = "GOOGLE"
)

func (a AuthProvider) String() string {
	return string(a)
}

func (a AuthProvider) IsValid() bool {
	return a == AuthProviderLocal || a == AuthProviderGoogle
}

package rbac

// Role names. Keep these stable; they are part of the auth contract.
const (
	// RoleCaregiver can schedule reminder calls and read reports for
	// patients in their care.
	RoleCaregiver = "caregiver"
	// RoleAdmin operates the service: reports, audit trail, all of it.
	RoleAdmin = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

// Valid reports whether a role name is one this service issues.
func Valid(role string) bool {
	return role == RoleCaregiver || role == RoleAdmin
}

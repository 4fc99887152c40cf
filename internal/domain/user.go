package domain

type UserRole string

const (
	UserRoleAdmin     UserRole = "ADMIN"
	UserRoleManager   UserRole = "MANAGER"
	UserRoleInspector UserRole = "INSPECTOR"
)

// CanResolveReservations reports whether the role may accept, decline or complete bookings.
func (r UserRole) CanResolveReservations() bool {
	return r == UserRoleAdmin || r == UserRoleManager
}

type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

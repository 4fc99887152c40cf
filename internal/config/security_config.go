package config

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityAccess                        // Access token required
	SecurityResolver                      // Access token with a role that may resolve reservations
)

func (l SecurityLevel) String() string {
	switch l {
	case SecurityPublic:
		return "public"
	case SecurityAccess:
		return "access"
	case SecurityResolver:
		return "resolver"
	}
	return "unknown"
}

// EndpointSecurityConfig maps HTTP route names and gRPC methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Operational - Public
	"health":                       SecurityPublic,
	"metrics":                      SecurityPublic,
	"/grpc.health.v1.Health/Check": SecurityPublic,

	// Policy - Public
	"reservation-policy.end-date":          SecurityPublic,
	"reservation-policy.vehicle-checklist": SecurityPublic,

	// Reservations - Access Protected
	"reservation.create":    SecurityAccess,
	"reservation.update":    SecurityAccess,
	"reservation.get":       SecurityAccess,
	"reservation.conflicts": SecurityAccess,
	"asset.reservations":    SecurityAccess,

	// Reservations - Resolver Protected
	"reservation.accept":   SecurityResolver,
	"reservation.decline":  SecurityResolver,
	"reservation.complete": SecurityResolver,

	// gRPC reservation service
	"/fleet.booking.v1.ReservationService/CreateReservation":     SecurityAccess,
	"/fleet.booking.v1.ReservationService/UpdateReservation":     SecurityAccess,
	"/fleet.booking.v1.ReservationService/GetReservation":        SecurityAccess,
	"/fleet.booking.v1.ReservationService/ListAssetReservations": SecurityAccess,
	"/fleet.booking.v1.ReservationService/CheckConflicts":        SecurityAccess,
	"/fleet.booking.v1.ReservationService/AcceptReservation":     SecurityResolver,
	"/fleet.booking.v1.ReservationService/DeclineReservation":    SecurityResolver,
	"/fleet.booking.v1.ReservationService/CompleteReservation":   SecurityResolver,
}

// GetSecurityLevel returns the security level for a given route or method
func GetSecurityLevel(endpoint string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[endpoint]; exists {
		return level
	}
	// Default to access for unknown endpoints
	return SecurityAccess
}

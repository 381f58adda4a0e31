// internal/app/system/authz/router.go
package authz

import "strings"

// Landing paths by role. Employees and project managers share a console;
// both client roles land on the client dashboard.
const (
	DestAdmin        = "/admin"
	DestEmployee     = "/employee"
	DestClient       = "/client/dashboard"
	DestAccessDenied = "/access-denied"
)

// DestinationForRole maps a role to its post-sign-in landing path. The
// mapping is total: any role it does not recognize (including the empty
// string) routes to the access-denied page rather than failing.
func DestinationForRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin:
		return DestAdmin
	case RoleEmployee, RoleProjectManager:
		return DestEmployee
	case RoleClient, RoleClientHead:
		return DestClient
	default:
		return DestAccessDenied
	}
}

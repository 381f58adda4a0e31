// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/deskhubhq/deskhub/internal/app/system/auth"
)

// Role values stored on user records.
const (
	RoleAdmin          = "admin"
	RoleEmployee       = "employee"
	RoleClient         = "client"
	RoleClientHead     = "client_head"
	RoleProjectManager = "project_manager"
)

// UserCtx returns the user's role (lowercased), name, id, and a found flag.
// If no user is present in context it returns "visitor", "", "", false, so
// callers can trust that ok=true means an authenticated user.
func UserCtx(r *http.Request) (role string, name string, userID string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", "", false
	}
	return strings.ToLower(user.Role), user.Name, user.ID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleAdmin
}

// IsStaff reports whether the current user is internal staff: an admin,
// employee, or project manager.
func IsStaff(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == RoleAdmin || role == RoleEmployee || role == RoleProjectManager)
}

// IsClient reports whether the current user is a client or client head.
func IsClient(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == RoleClient || role == RoleClientHead)
}

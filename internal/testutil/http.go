package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/deskhubhq/deskhub/internal/app/system/auth"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID      string
	Name    string
	Email   string
	Role    string
	Project string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    uuid.NewString(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admin",
	}
}

// EmployeeUser returns a TestUser with employee role.
func EmployeeUser() TestUser {
	return TestUser{
		ID:    uuid.NewString(),
		Name:  "Test Employee",
		Email: "employee@test.com",
		Role:  "employee",
	}
}

// ClientUser returns a TestUser with client role scoped to a project.
func ClientUser(project string) TestUser {
	return TestUser{
		ID:      uuid.NewString(),
		Name:    "Test Client",
		Email:   "client@test.com",
		Role:    "client",
		Project: project,
	}
}

// WithSessionUser attaches the test user to the request context the same way
// the session middleware does, so handlers under test see a signed-in user.
func WithSessionUser(r *http.Request, u TestUser) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Project: u.Project})
}

// WithChiURLParam adds a chi URL parameter to the request context, keeping
// any parameters added by earlier calls.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

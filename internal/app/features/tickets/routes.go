// internal/app/features/tickets/routes.go
package tickets

import (
	"github.com/go-chi/chi/v5"

	"github.com/deskhubhq/deskhub/internal/app/system/auth"
	"github.com/deskhubhq/deskhub/internal/app/system/authz"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// The public ticket form posts here without a session.
	r.Post("/", h.HandleCreate)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/", h.HandleList)
		r.Get("/feed", h.HandleFeed)
		r.Get("/{id}", h.HandleGet)
		r.Post("/{id}/responses", h.HandleAddResponse)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole(authz.RoleAdmin, authz.RoleEmployee, authz.RoleProjectManager))
		r.Post("/{id}/status", h.HandleUpdateStatus)
		r.Post("/{id}/star", h.HandleStar)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole(authz.RoleAdmin))
		r.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Delete("/{id}", h.HandleDelete)

	r.Post("/{id}/members", h.HandleAddMember)
	r.Put("/{id}/members/{memberID}", h.HandleUpdateMember)
	r.Delete("/{id}/members/{memberID}", h.HandleRemoveMember)
	return r
}

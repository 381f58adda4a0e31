// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/deskhubhq/deskhub/internal/app/features/shared"
	projectstore "github.com/deskhubhq/deskhub/internal/app/store/projects"
	"github.com/deskhubhq/deskhub/internal/app/system/authutil"
	"github.com/deskhubhq/deskhub/internal/app/system/inflight"
	"github.com/deskhubhq/deskhub/internal/app/system/membership"
	"github.com/deskhubhq/deskhub/internal/app/system/normalize"
	"github.com/deskhubhq/deskhub/internal/app/system/timeouts"
)

// Handler serves the admin project console: project CRUD plus the member
// operations that drive the membership synchronizer.
type Handler struct {
	Projects *projectstore.Store
	Sync     *membership.Synchronizer
	Guard    *inflight.Guard
	Log      *zap.Logger
}

func NewHandler(projects *projectstore.Store, sync *membership.Synchronizer, guard *inflight.Guard, logger *zap.Logger) *Handler {
	return &Handler{Projects: projects, Sync: sync, Guard: guard, Log: logger}
}

/* ------------------------------- projects -------------------------------- */

// HandleList handles GET /projects.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Projects.List(ctx)
	if err != nil {
		h.Log.Error("list projects", zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not load projects")
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate handles POST /projects.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := shared.DecodeJSON(r, &req, 1<<16); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if normalize.Name(req.Name) == "" {
		shared.WriteError(w, http.StatusBadRequest, "project name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.Create(ctx, req.Name, req.Description)
	if err != nil {
		h.Log.Error("create project", zap.String("name", req.Name), zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not create project")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, p)
}

// HandleGet handles GET /projects/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			shared.WriteError(w, http.StatusNotFound, "project not found")
			return
		}
		h.Log.Error("get project", zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not load project")
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /projects/{id}. Members' user records are left
// in place; remove members first if access should be revoked.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Projects.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			shared.WriteError(w, http.StatusNotFound, "project not found")
			return
		}
		h.Log.Error("delete project", zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not delete project")
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.SuccessResponse{Message: "project deleted"})
}

/* -------------------------------- members -------------------------------- */

type addMemberRequest struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	UserType     string `json:"user_type"`
	TempPassword string `json:"temp_password,omitempty"`
}

// HandleAddMember handles POST /projects/{id}/members. Adding an email that
// is already a member updates the user record and appends another list entry.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req addMemberRequest
	if err := shared.DecodeJSON(r, &req, 1<<16); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Role == "" || req.UserType == "" {
		shared.WriteError(w, http.StatusBadRequest, "email, role, and user_type are required")
		return
	}
	if req.TempPassword != "" {
		if err := authutil.ValidatePassword(req.TempPassword); err != nil {
			shared.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	done, ok := h.Guard.Begin("member:" + projectID + ":" + email)
	if !ok {
		shared.WriteError(w, http.StatusConflict, "this member is already being updated")
		return
	}
	defer done()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entry, err := h.Sync.AddOrUpdateMember(ctx, projectID, email, req.Role, req.UserType, req.TempPassword)
	if err != nil {
		switch {
		case errors.Is(err, projectstore.ErrNotFound):
			shared.WriteError(w, http.StatusNotFound, "project not found")
		case errors.Is(err, membership.ErrPasswordRequired):
			shared.WriteError(w, http.StatusBadRequest, "a temporary password is required for a new member")
		default:
			h.Log.Error("add member",
				zap.String("project_id", projectID),
				zap.String("email", email),
				zap.Error(err))
			shared.WriteError(w, http.StatusInternalServerError, "could not add member")
		}
		return
	}
	shared.WriteJSON(w, http.StatusCreated, entry)
}

type updateMemberRequest struct {
	Role     string `json:"role"`
	UserType string `json:"user_type"`
}

// HandleUpdateMember handles PUT /projects/{id}/members/{memberID}.
func (h *Handler) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberID")

	var req updateMemberRequest
	if err := shared.DecodeJSON(r, &req, 1<<16); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" || req.UserType == "" {
		shared.WriteError(w, http.StatusBadRequest, "role and user_type are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entry, err := h.Sync.UpdateMemberRole(ctx, projectID, memberID, req.Role, req.UserType)
	if err != nil {
		switch {
		case errors.Is(err, projectstore.ErrNotFound):
			shared.WriteError(w, http.StatusNotFound, "project not found")
		case errors.Is(err, membership.ErrMemberNotFound):
			shared.WriteError(w, http.StatusNotFound, "member not found in project")
		default:
			h.Log.Error("update member",
				zap.String("project_id", projectID),
				zap.String("member_id", memberID),
				zap.Error(err))
			shared.WriteError(w, http.StatusInternalServerError, "could not update member")
		}
		return
	}
	shared.WriteJSON(w, http.StatusOK, entry)
}

// HandleRemoveMember handles DELETE /projects/{id}/members/{memberID}.
// Removal deletes the member's user record: their access to the whole system
// is revoked, not just this project.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Sync.RemoveMember(ctx, projectID, memberID); err != nil {
		switch {
		case errors.Is(err, projectstore.ErrNotFound):
			shared.WriteError(w, http.StatusNotFound, "project not found")
		case errors.Is(err, membership.ErrMemberNotFound):
			shared.WriteError(w, http.StatusNotFound, "member not found in project")
		default:
			h.Log.Error("remove member",
				zap.String("project_id", projectID),
				zap.String("member_id", memberID),
				zap.Error(err))
			shared.WriteError(w, http.StatusInternalServerError, "could not remove member")
		}
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.SuccessResponse{Message: "member removed"})
}

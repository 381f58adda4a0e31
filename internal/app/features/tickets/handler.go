// internal/app/features/tickets/handler.go
package tickets

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/deskhubhq/deskhub/internal/app/features/shared"
	ticketstore "github.com/deskhubhq/deskhub/internal/app/store/tickets"
	"github.com/deskhubhq/deskhub/internal/app/system/auth"
	"github.com/deskhubhq/deskhub/internal/app/system/authz"
	"github.com/deskhubhq/deskhub/internal/app/system/htmlsanitize"
	"github.com/deskhubhq/deskhub/internal/app/system/inflight"
	"github.com/deskhubhq/deskhub/internal/app/system/metrics"
	"github.com/deskhubhq/deskhub/internal/app/system/normalize"
	"github.com/deskhubhq/deskhub/internal/app/system/timeouts"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

// duplicateWindow is how long after a submission the same subject+email is
// treated as an accidental resubmit.
const duplicateWindow = 24 * time.Hour

type Handler struct {
	Tickets *ticketstore.Store
	Feed    *ticketstore.Feed
	Guard   *inflight.Guard
	Log     *zap.Logger

	// MaxAttachmentBytes bounds the decoded size of a single attachment.
	MaxAttachmentBytes int64
}

func NewHandler(tickets *ticketstore.Store, feed *ticketstore.Feed, guard *inflight.Guard, maxAttachment int64, logger *zap.Logger) *Handler {
	return &Handler{
		Tickets:            tickets,
		Feed:               feed,
		Guard:              guard,
		Log:                logger,
		MaxAttachmentBytes: maxAttachment,
	}
}

/* -------------------------------- create --------------------------------- */

type createTicketRequest struct {
	Subject     string              `json:"subject"`
	Description string              `json:"description"`
	Customer    string              `json:"customer"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	Project     string              `json:"project"`
	Category    string              `json:"category"`
	Priority    string              `json:"priority"`
	Attachments []models.Attachment `json:"attachments"`
}

// HandleCreate handles POST /tickets, the public form target.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := shared.DecodeJSON(r, &req, 8<<20); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Email = normalize.Email(req.Email)
	if req.Subject == "" || req.Description == "" || req.Email == "" || req.Project == "" {
		shared.WriteError(w, http.StatusBadRequest, "subject, description, email, and project are required")
		return
	}
	switch req.Priority {
	case "Low", "Medium", "High":
	case "":
		req.Priority = "Medium"
	default:
		shared.WriteError(w, http.StatusBadRequest, "priority must be Low, Medium, or High")
		return
	}
	for _, a := range req.Attachments {
		raw, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil {
			shared.WriteError(w, http.StatusBadRequest, "attachment data must be base64")
			return
		}
		if h.MaxAttachmentBytes > 0 && int64(len(raw)) > h.MaxAttachmentBytes {
			shared.WriteError(w, http.StatusRequestEntityTooLarge, "attachment too large")
			return
		}
	}

	done, ok := h.Guard.Begin("ticket:" + req.Email + ":" + req.Subject)
	if !ok {
		shared.WriteError(w, http.StatusConflict, "this ticket is already being submitted")
		return
	}
	defer done()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	dup, err := h.Tickets.HasRecentDuplicate(ctx, req.Subject, req.Email, duplicateWindow)
	if err != nil {
		h.Log.Error("duplicate check", zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not create ticket")
		return
	}
	if dup {
		shared.WriteError(w, http.StatusConflict, "a ticket with this subject was already submitted recently")
		return
	}

	created, err := h.Tickets.Create(ctx, models.Ticket{
		Subject:     req.Subject,
		Description: htmlsanitize.PrepareForDisplay(req.Description),
		Customer:    normalize.Name(req.Customer),
		Email:       req.Email,
		Phone:       strings.TrimSpace(req.Phone),
		Project:     req.Project,
		Category:    req.Category,
		Priority:    req.Priority,
		Attachments: req.Attachments,
	})
	if err != nil {
		h.Log.Error("create ticket", zap.String("email", req.Email), zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not create ticket")
		return
	}

	metrics.TicketsCreatedTotal.WithLabelValues(created.Priority).Inc()
	h.Feed.Publish()
	shared.WriteJSON(w, http.StatusCreated, created)
}

/* --------------------------------- reads --------------------------------- */

// filterFor scopes a ticket query to what the signed-in user may see: staff
// see everything, clients only their own project.
func filterFor(r *http.Request) (ticketstore.Filter, bool) {
	f := ticketstore.Filter{Status: r.URL.Query().Get("status")}
	if authz.IsStaff(r) {
		return f, true
	}
	user, ok := auth.CurrentUser(r)
	if !ok || user.Project == "" {
		return f, false
	}
	f.Project = user.Project
	return f, true
}

// HandleList handles GET /tickets.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	f, ok := filterFor(r)
	if !ok {
		shared.WriteError(w, http.StatusForbidden, "no project is associated with this account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Tickets.List(ctx, f)
	if err != nil {
		h.Log.Error("list tickets", zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not load tickets")
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /tickets/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tickets.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ticketstore.ErrNotFound) {
			shared.WriteError(w, http.StatusNotFound, "ticket not found")
			return
		}
		h.Log.Error("get ticket", zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not load ticket")
		return
	}
	if !authz.IsStaff(r) {
		user, ok := auth.CurrentUser(r)
		if !ok || user.Project != t.Project {
			shared.WriteError(w, http.StatusNotFound, "ticket not found")
			return
		}
	}
	shared.WriteJSON(w, http.StatusOK, t)
}

/* ------------------------------- mutations -------------------------------- */

type statusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus handles POST /tickets/{id}/status (staff only).
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := shared.DecodeJSON(r, &req, 1<<12); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidTicketStatus(req.Status) {
		shared.WriteError(w, http.StatusBadRequest, "status must be Open, In Progress, Resolved, or Closed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tickets.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status); err != nil {
		h.writeTicketErr(w, "update ticket status", err)
		return
	}
	h.Feed.Publish()
	shared.WriteJSON(w, http.StatusOK, shared.SuccessResponse{Message: "status updated"})
}

type responseRequest struct {
	Message string `json:"message"`
}

// HandleAddResponse handles POST /tickets/{id}/responses. Staff replies land
// in the admin list, client replies in the customer list; the two lists
// never mix.
func (h *Handler) HandleAddResponse(w http.ResponseWriter, r *http.Request) {
	var req responseRequest
	if err := shared.DecodeJSON(r, &req, 1<<18); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		shared.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}
	user, ok := auth.CurrentUser(r)
	if !ok {
		shared.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	resp := models.TicketResponse{
		Message:   htmlsanitize.PrepareForDisplay(req.Message),
		Author:    user.Name,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id := chi.URLParam(r, "id")
	var err error
	if authz.IsStaff(r) {
		err = h.Tickets.AppendAdminResponse(ctx, id, resp)
	} else {
		err = h.Tickets.AppendCustomerResponse(ctx, id, resp)
	}
	if err != nil {
		h.writeTicketErr(w, "append ticket response", err)
		return
	}
	h.Feed.Publish()
	shared.WriteJSON(w, http.StatusOK, resp)
}

// HandleStar handles POST /tickets/{id}/star (staff only): toggles the flag.
func (h *Handler) HandleStar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id := chi.URLParam(r, "id")
	t, err := h.Tickets.Get(ctx, id)
	if err != nil {
		h.writeTicketErr(w, "load ticket for star", err)
		return
	}
	if err := h.Tickets.SetStarred(ctx, id, !t.Starred); err != nil {
		h.writeTicketErr(w, "star ticket", err)
		return
	}
	h.Feed.Publish()
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"starred": !t.Starred})
}

// HandleDelete handles DELETE /tickets/{id} (admin only).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tickets.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.writeTicketErr(w, "delete ticket", err)
		return
	}
	h.Feed.Publish()
	shared.WriteJSON(w, http.StatusOK, shared.SuccessResponse{Message: "ticket deleted"})
}

func (h *Handler) writeTicketErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ticketstore.ErrNotFound) {
		shared.WriteError(w, http.StatusNotFound, "ticket not found")
		return
	}
	h.Log.Error(op, zap.Error(err))
	shared.WriteError(w, http.StatusInternalServerError, "ticket operation failed")
}

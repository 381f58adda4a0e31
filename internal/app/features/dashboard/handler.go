// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/deskhubhq/deskhub/internal/app/features/shared"
	loginstore "github.com/deskhubhq/deskhub/internal/app/store/logins"
	projectstore "github.com/deskhubhq/deskhub/internal/app/store/projects"
	ticketstore "github.com/deskhubhq/deskhub/internal/app/store/tickets"
	userstore "github.com/deskhubhq/deskhub/internal/app/store/users"
	"github.com/deskhubhq/deskhub/internal/app/system/normalize"
	"github.com/deskhubhq/deskhub/internal/app/system/timeouts"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

type Handler struct {
	Users    *userstore.Store
	Projects *projectstore.Store
	Tickets  *ticketstore.Store
	Logins   *loginstore.Store
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, projects *projectstore.Store, tickets *ticketstore.Store, logins *loginstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Projects: projects, Tickets: tickets, Logins: logins, Log: logger}
}

type statsResponse struct {
	UsersByRole map[string]int64 `json:"users_by_role"`
	Projects    int64            `json:"projects"`
	Tickets     int64            `json:"tickets"`
}

// HandleStats handles GET /dashboard/stats (admin only).
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	byRole, err := h.Users.CountByRole(ctx)
	if err != nil {
		h.Log.Error("count users", zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	projects, err := h.Projects.Count(ctx)
	if err != nil {
		h.Log.Error("count projects", zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	tickets, err := h.Tickets.Count(ctx)
	if err != nil {
		h.Log.Error("count tickets", zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not load stats")
		return
	}

	shared.WriteJSON(w, http.StatusOK, statsResponse{
		UsersByRole: byRole,
		Projects:    projects,
		Tickets:     tickets,
	})
}

// HandleRecentSignIns handles GET /dashboard/signins?email= (admin only):
// the sign-in attempts recorded for one account, newest first.
func (h *Handler) HandleRecentSignIns(w http.ResponseWriter, r *http.Request) {
	email := normalize.Email(r.URL.Query().Get("email"))
	if email == "" {
		shared.WriteError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	recs, err := h.Logins.RecentForEmail(ctx, email, 20)
	if err != nil {
		h.Log.Error("list sign-in records", zap.String("email", email), zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "could not load sign-in records")
		return
	}
	if recs == nil {
		recs = []models.SignInRecord{}
	}
	shared.WriteJSON(w, http.StatusOK, recs)
}

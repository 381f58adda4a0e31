// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/deskhubhq/deskhub/internal/app/features/shared"
	"github.com/deskhubhq/deskhub/internal/app/system/auth"
	"github.com/deskhubhq/deskhub/internal/app/system/authz"
	"github.com/deskhubhq/deskhub/internal/app/system/inflight"
	"github.com/deskhubhq/deskhub/internal/app/system/normalize"
	"github.com/deskhubhq/deskhub/internal/app/system/signin"
	"github.com/deskhubhq/deskhub/internal/app/system/timeouts"
)

// signerIn is what the handler needs from the reconciler.
type signerIn interface {
	SignIn(ctx context.Context, email, password string) (signin.Profile, error)
}

// attemptRecorder persists sign-in attempts for auditing; nil disables it.
type attemptRecorder interface {
	Record(ctx context.Context, r *http.Request, email, userID, outcome string) error
}

// Handler processes sign-in requests.
type Handler struct {
	Reconciler signerIn
	Sessions   *auth.SessionManager
	Guard      *inflight.Guard
	Attempts   attemptRecorder
	Log        *zap.Logger
}

func NewHandler(rec signerIn, sessions *auth.SessionManager, guard *inflight.Guard, attempts attemptRecorder, logger *zap.Logger) *Handler {
	return &Handler{Reconciler: rec, Sessions: sessions, Guard: guard, Attempts: attempts, Log: logger}
}

// recordAttempt writes the audit record; failures are logged, never surfaced.
func (h *Handler) recordAttempt(r *http.Request, email, userID, outcome string) {
	if h.Attempts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()
	if err := h.Attempts.Record(ctx, r, email, userID, outcome); err != nil {
		h.Log.Warn("sign-in audit record failed", zap.String("email", email), zap.Error(err))
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Profile     signin.Profile `json:"profile"`
	Destination string         `json:"destination"`
}

// HandleLogin handles POST /login.
//
// A second submission for the same email while one is in flight gets 409;
// the form's double-click is the usual culprit.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(r, &req, 1<<16); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		shared.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	done, ok := h.Guard.Begin("signin:" + email)
	if !ok {
		shared.WriteError(w, http.StatusConflict, "a sign-in for this email is already in progress")
		return
	}
	defer done()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	profile, err := h.Reconciler.SignIn(ctx, email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, signin.ErrInvalidCredentials):
			h.recordAttempt(r, email, "", "invalid_credentials")
			shared.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, signin.ErrActivationFailed):
			h.recordAttempt(r, email, "", "activation_failed")
			shared.WriteError(w, http.StatusBadGateway, "account activation failed; try again or contact support")
		default:
			h.Log.Error("sign-in failed", zap.String("email", email), zap.Error(err))
			h.recordAttempt(r, email, "", "error")
			shared.WriteError(w, http.StatusInternalServerError, "sign-in failed; please try again")
		}
		return
	}
	h.recordAttempt(r, email, profile.ID, "success")

	su := auth.SessionUser{
		ID:    profile.ID,
		Name:  profile.Name,
		Email: profile.Email,
		Role:  profile.Role,
	}
	if profile.Project != nil {
		su.Project = *profile.Project
	}
	if err := h.Sessions.SignIn(w, r, su); err != nil {
		h.Log.Error("session persist failed", zap.String("email", email), zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "sign-in failed; please try again")
		return
	}

	shared.WriteJSON(w, http.StatusOK, loginResponse{
		Profile:     profile,
		Destination: authz.DestinationForRole(profile.Role),
	})
}

// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/deskhubhq/deskhub/internal/app/features/shared"
	"github.com/deskhubhq/deskhub/internal/app/system/auth"
)

type Handler struct {
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

func NewHandler(sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Sessions: sessions, Log: logger}
}

// HandleLogout handles POST /logout. Signing out an already-signed-out
// session is fine.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Error("sign-out failed", zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, "sign-out failed")
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.SuccessResponse{Message: "signed out"})
}

// internal/app/features/tickets/feed.go
package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/deskhubhq/deskhub/internal/app/features/shared"
	ticketstore "github.com/deskhubhq/deskhub/internal/app/store/tickets"
	"github.com/deskhubhq/deskhub/internal/app/system/timeouts"
)

// HandleFeed handles GET /tickets/feed as a Server-Sent Events stream. The
// client receives a full role-scoped snapshot immediately and again after
// every ticket mutation, and ends the stream by closing the connection.
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	f, ok := filterFor(r)
	if !ok {
		shared.WriteError(w, http.StatusForbidden, "no project is associated with this account")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.WriteError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	changes := h.Feed.Subscribe(r.Context())

	if err := h.writeSnapshot(r.Context(), w, f); err != nil {
		h.Log.Debug("ticket feed ended", zap.Error(err))
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-changes:
			if !open {
				return
			}
			if err := h.writeSnapshot(r.Context(), w, f); err != nil {
				h.Log.Debug("ticket feed ended", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler) writeSnapshot(ctx context.Context, w http.ResponseWriter, f ticketstore.Filter) error {
	qctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	list, err := h.Tickets.List(qctx, f)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: tickets\ndata: %s\n\n", payload)
	return err
}

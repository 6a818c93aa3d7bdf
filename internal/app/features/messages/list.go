package messages

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/nearby/internal/app/system/reqlog"
	"github.com/dalemusser/nearby/internal/app/system/respond"
	"github.com/dalemusser/nearby/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeList handles GET /events/{eventId}/messages?limit=N.
//
// Returns the newest N messages (default 50, at most 200) oldest first.
// Membership is not required to read.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, "limit: must be an integer")
			return
		}
		limit = n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "list messages")
	defer cancel()

	msgs, err := h.Messages.List(ctx, chi.URLParam(r, "eventId"), limit)
	if err != nil {
		respond.StoreFailure(w, reqlog.Logger(r.Context(), h.Log), "list messages", err)
		return
	}
	respond.JSON(w, http.StatusOK, msgs)
}

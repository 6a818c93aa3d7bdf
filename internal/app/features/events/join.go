package events

import (
	"errors"
	"net/http"

	eventstore "github.com/dalemusser/nearby/internal/app/store/events"
	membershipstore "github.com/dalemusser/nearby/internal/app/store/memberships"
	"github.com/dalemusser/nearby/internal/app/system/metrics"
	"github.com/dalemusser/nearby/internal/app/system/reqlog"
	"github.com/dalemusser/nearby/internal/app/system/respond"
	"github.com/dalemusser/nearby/internal/app/system/timeouts"
	"github.com/dalemusser/nearby/internal/app/system/validation"
	"github.com/go-chi/chi/v5"
)

type joinRequest struct {
	User string `json:"user" validate:"required,notblank"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// HandleJoin handles POST /events/{eventId}/join.
//
// Joining is idempotent for the membership record, but every call adds one
// to the event's attendee count, rejoins included.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "join event")
	defer cancel()

	res, err := h.Members.Join(ctx, chi.URLParam(r, "eventId"), req.User)
	switch {
	case err == nil:
	case errors.Is(err, eventstore.ErrInvalidEventID):
		respond.Detail(w, http.StatusBadRequest, "Invalid event id")
		return
	case errors.Is(err, eventstore.ErrEventNotFound):
		respond.Detail(w, http.StatusNotFound, "Event not found")
		return
	case errors.Is(err, membershipstore.ErrInvalidUser):
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	default:
		respond.StoreFailure(w, reqlog.Logger(r.Context(), h.Log), "join event", err)
		return
	}

	metrics.RecordJoin(res.Created)
	respond.JSON(w, http.StatusOK, okResponse{OK: true})
}

package messages

import (
	"errors"
	"net/http"

	messagestore "github.com/dalemusser/nearby/internal/app/store/messages"
	"github.com/dalemusser/nearby/internal/app/system/metrics"
	"github.com/dalemusser/nearby/internal/app/system/reqlog"
	"github.com/dalemusser/nearby/internal/app/system/respond"
	"github.com/dalemusser/nearby/internal/app/system/timeouts"
	"github.com/dalemusser/nearby/internal/app/system/validation"
	"github.com/go-chi/chi/v5"
)

type sendRequest struct {
	User string `json:"user" validate:"required,notblank"`
	Text string `json:"text" validate:"required,notblank"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// HandleSend handles POST /events/{eventId}/messages. Only members may send.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "send message")
	defer cancel()

	id, err := h.Messages.Send(ctx, chi.URLParam(r, "eventId"), req.User, req.Text)
	switch {
	case err == nil:
	case errors.Is(err, messagestore.ErrNotAMember):
		metrics.RecordMessage(false)
		respond.Detail(w, http.StatusForbidden, "Join the event to chat")
		return
	case errors.Is(err, messagestore.ErrInvalidMessage):
		metrics.RecordMessage(false)
		respond.Detail(w, http.StatusUnprocessableEntity, "text: must not be blank")
		return
	case errors.Is(err, messagestore.ErrMarkup):
		metrics.RecordMessage(false)
		respond.Detail(w, http.StatusUnprocessableEntity, "text: must not contain HTML markup")
		return
	default:
		respond.StoreFailure(w, reqlog.Logger(r.Context(), h.Log), "send message", err)
		return
	}

	metrics.RecordMessage(true)
	respond.JSON(w, http.StatusOK, sendResponse{ID: id.Hex()})
}

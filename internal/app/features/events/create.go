package events

import (
	"errors"
	"net/http"

	eventstore "github.com/dalemusser/nearby/internal/app/store/events"
	"github.com/dalemusser/nearby/internal/app/system/metrics"
	"github.com/dalemusser/nearby/internal/app/system/reqlog"
	"github.com/dalemusser/nearby/internal/app/system/respond"
	"github.com/dalemusser/nearby/internal/app/system/timeouts"
	"github.com/dalemusser/nearby/internal/app/system/validation"
	"github.com/dalemusser/nearby/internal/domain/models"
	"go.uber.org/zap"
)

type createRequest struct {
	HostName  string   `json:"host_name" validate:"required,notblank"`
	Activity  string   `json:"activity" validate:"required,notblank"`
	Lat       *float64 `json:"lat" validate:"required,latitude"`
	Lng       *float64 `json:"lng" validate:"required,longitude"`
	Attendees *int     `json:"attendees" validate:"omitempty,min=0"`
}

type createResponse struct {
	ID string `json:"id"`
}

// HandleCreate handles POST /events and answers 201 {"id": "..."}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ev := models.Event{
		HostName: req.HostName,
		Activity: req.Activity,
		Lat:      *req.Lat,
		Lng:      *req.Lng,
	}
	if req.Attendees != nil {
		ev.Attendees = *req.Attendees
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "create event")
	defer cancel()

	id, err := h.Events.Create(ctx, ev)
	if err != nil {
		if errors.Is(err, eventstore.ErrInvalidEvent) {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respond.StoreFailure(w, reqlog.Logger(r.Context(), h.Log), "create event", err)
		return
	}

	metrics.EventsCreatedTotal.Inc()
	reqlog.Logger(r.Context(), h.Log).Info("event created",
		zap.String("event_id", id.Hex()),
		zap.String("activity", ev.Activity))
	respond.JSON(w, http.StatusCreated, createResponse{ID: id.Hex()})
}

package events

import (
	"errors"
	"net/http"
	"strconv"

	eventstore "github.com/dalemusser/nearby/internal/app/store/events"
	"github.com/dalemusser/nearby/internal/app/system/reqlog"
	"github.com/dalemusser/nearby/internal/app/system/respond"
	"github.com/dalemusser/nearby/internal/app/system/timeouts"
	"github.com/dalemusser/nearby/internal/app/system/validation"
)

type listQuery struct {
	Lat      *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng      *float64 `json:"lng" validate:"omitempty,longitude"`
	RadiusKm *float64 `json:"radius_km" validate:"omitempty,gt=0"`
}

// parseListQuery reads lat, lng and radius_km. Absent parameters stay nil.
func parseListQuery(r *http.Request) (listQuery, error) {
	var q listQuery
	values := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"lat", &q.Lat},
		{"lng", &q.Lng},
		{"radius_km", &q.RadiusKm},
	} {
		raw := values.Get(p.name)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, &validation.Error{Fields: []validation.FieldError{{
				Field: p.name, Tag: "number", Message: "must be a number",
			}}}
		}
		*p.dst = &f
	}
	return q, validation.Struct(q)
}

// ServeList handles GET /events.
//
// With both lat and lng, only events inside the radius_km box (default 10 km)
// are returned. At most 200 events, in no particular order.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	lq := eventstore.ListQuery{Lat: q.Lat, Lng: q.Lng}
	if q.RadiusKm != nil {
		lq.RadiusKm = *q.RadiusKm
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "list events")
	defer cancel()

	evs, err := h.Events.List(ctx, lq)
	if err != nil {
		if errors.Is(err, eventstore.ErrInvalidQuery) {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respond.StoreFailure(w, reqlog.Logger(r.Context(), h.Log), "list events", err)
		return
	}

	respond.JSON(w, http.StatusOK, evs)
}

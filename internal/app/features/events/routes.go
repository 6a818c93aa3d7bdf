// internal/app/features/events/routes.go
package events

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the /events subrouter. writeLimit wraps the POST routes.
func Routes(h *Handler, writeLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)

	r.Group(func(wr chi.Router) {
		wr.Use(writeLimit)
		wr.Post("/", h.HandleCreate)
		wr.Post("/{eventId}/join", h.HandleJoin)
	})

	return r
}

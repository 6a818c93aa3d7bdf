// internal/app/features/messages/routes.go
package messages

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the chat subrouter. Reads are open to anyone; writeLimit
// wraps sends.
func Routes(h *Handler, writeLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.With(writeLimit).Post("/", h.HandleSend)
	return r
}

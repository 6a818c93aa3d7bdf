package home

import "github.com/go-chi/chi/v5"

// Routes mounts the API banner.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	r.Head("/", h.ServeRoot)
	return r
}

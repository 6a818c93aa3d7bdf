package health

import "github.com/go-chi/chi/v5"

// Routes serves the store health check at the mount root. HEAD is answered
// too so load balancers can check it without a body.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	r.Head("/", h.Serve)
	return r
}

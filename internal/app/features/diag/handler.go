// Package diag serves GET /test, a store diagnostic that always answers 200
// and reports store failures in the body.
package diag

import (
	"context"
	"net/http"

	"github.com/dalemusser/nearby/internal/app/system/respond"
	"github.com/dalemusser/nearby/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Lister is the part of the document store the diagnostic needs.
type Lister interface {
	Collections(ctx context.Context) ([]string, error)
	Backend() string
}

// breakerReporter is implemented by stores that sit behind a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

type Handler struct {
	Store Lister
	Log   *zap.Logger
}

func NewHandler(store Lister, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Log: logger}
}

// ServeTest handles GET /test.
//
//	{ "backend":"ok", "store":"mongo", "db":"ok", "collections":["events", ...] }
//
// When listing fails, "collections" is absent and "error" holds the reason.
// Stores behind a circuit breaker add "breaker" with its state.
func (h *Handler) ServeTest(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"backend": "ok",
		"store":   "not-configured",
		"db":      "not-configured",
	}
	if h.Store == nil {
		respond.JSON(w, http.StatusOK, info)
		return
	}
	info["store"] = h.Store.Backend()
	info["db"] = "ok"
	if br, ok := h.Store.(breakerReporter); ok {
		info["breaker"] = br.BreakerState()
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.Log, "diagnostic list collections")
	defer cancel()

	names, err := h.Store.Collections(ctx)
	if err != nil {
		h.Log.Warn("diagnostic: list collections failed", zap.Error(err))
		info["error"] = err.Error()
	} else {
		info["collections"] = names
	}
	respond.JSON(w, http.StatusOK, info)
}

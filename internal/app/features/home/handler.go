package home

import (
	"net/http"

	"github.com/dalemusser/nearby/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler serves the API banner.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type banner struct {
	Message string `json:"message"`
}

// ServeRoot handles GET /.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, banner{Message: "Events + Chat API"})
}

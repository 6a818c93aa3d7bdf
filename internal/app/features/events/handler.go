// internal/app/features/events/handler.go
package events

import (
	eventstore "github.com/dalemusser/nearby/internal/app/store/events"
	membershipstore "github.com/dalemusser/nearby/internal/app/store/memberships"
	"go.uber.org/zap"
)

// Handler serves event discovery, creation and joining.
type Handler struct {
	Events  *eventstore.Store
	Members *membershipstore.Store
	Log     *zap.Logger
}

func NewHandler(events *eventstore.Store, members *membershipstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Events:  events,
		Members: members,
		Log:     logger,
	}
}

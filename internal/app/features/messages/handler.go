// internal/app/features/messages/handler.go
package messages

import (
	messagestore "github.com/dalemusser/nearby/internal/app/store/messages"
	"go.uber.org/zap"
)

// Handler serves the chat log of one event. Routes are mounted under
// /events/{eventId}/messages.
type Handler struct {
	Messages *messagestore.Store
	Log      *zap.Logger
}

func NewHandler(messages *messagestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Messages: messages,
		Log:      logger,
	}
}

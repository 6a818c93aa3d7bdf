// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership records that a user joined an event.
// Exactly one document per (event_id, user); it gates chat writes.
type Membership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	User      string             `bson:"user" json:"user"` // display name, not a verified identity
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

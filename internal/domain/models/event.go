// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a location-tagged gathering that people can discover and join.
//
// Attendees is only ever changed by an atomic $inc when someone joins; it is
// a counter of join calls, not of distinct members (a rejoin counts again).
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HostName  string             `bson:"host_name" json:"host_name"`
	Activity  string             `bson:"activity" json:"activity"`
	Lat       float64            `bson:"lat" json:"lat"`
	Lng       float64            `bson:"lng" json:"lng"`
	Attendees int                `bson:"attendees" json:"attendees"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// internal/domain/models/subscriber.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscriber is a newsletter sign-up from the site footer.
type Subscriber struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email      string             `bson:"email" json:"email"`       // as entered, lowercased
	EmailCI    string             `bson:"email_ci" json:"email_ci"` // folded, unique
	Source     string             `bson:"source" json:"source"`     // "footer"
	Signups    int                `bson:"signups" json:"signups"`   // times this address subscribed
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	LastSeenAt time.Time          `bson:"last_seen_at" json:"last_seen_at"`
}

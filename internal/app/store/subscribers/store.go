// internal/app/store/subscribers/store.go
package subscribers

import (
	"context"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/normalize"
	"github.com/dalemusser/coconsult/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection backing the store.
const CollectionName = "subscribers"

// Store persists newsletter subscribers.
type Store struct {
	c *mongo.Collection
}

// New creates a subscriber Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Upsert records a sign-up for email. A repeat sign-up bumps Signups and
// LastSeenAt; created reports whether this was the first one.
func (s *Store) Upsert(ctx context.Context, email, source string) (sub models.Subscriber, created bool, err error) {
	email = normalize.Email(email)
	now := time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"email_ci": text.Fold(email)},
		bson.M{
			"$set": bson.M{
				"email":        email,
				"last_seen_at": now,
			},
			"$inc": bson.M{"signups": 1},
			"$setOnInsert": bson.M{
				"source":     source,
				"created_at": now,
			},
		},
		opts,
	).Decode(&sub)
	if err != nil {
		return models.Subscriber{}, false, err
	}
	return sub, sub.Signups == 1, nil
}

// Count returns the number of subscribers.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Remove deletes the subscriber for email. Missing subscribers are not an
// error.
func (s *Store) Remove(ctx context.Context, email string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))})
	return err
}

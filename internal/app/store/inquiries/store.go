// internal/app/store/inquiries/store.go
package inquiries

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/indexes"
	"github.com/dalemusser/coconsult/internal/app/system/normalize"
	"github.com/dalemusser/coconsult/internal/app/store/storeutil"
	"github.com/dalemusser/coconsult/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no inquiry matches.
var ErrNotFound = errors.New("inquiry not found")

// ErrStampUsed is returned by Create when another inquiry already carries
// the same StampID.
var ErrStampUsed = errors.New("inquiry: form stamp already used")

// CollectionName is the MongoDB collection backing the store.
const CollectionName = "inquiries"

// Store persists contact-form inquiries.
type Store struct {
	c *mongo.Collection
}

// New creates an inquiry Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Create stores a new pending inquiry. ID, Reference, Status and timestamps
// are assigned here.
func (s *Store) Create(ctx context.Context, in models.Inquiry) (models.Inquiry, error) {
	now := time.Now().UTC()
	in.ID = primitive.NewObjectID()
	if in.Reference == "" {
		in.Reference = uuid.NewString()
	}
	in.Email = normalize.Email(in.Email)
	in.Status = models.InquiryPending
	in.Error = ""
	in.CreatedAt = now
	in.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, in); err != nil {
		if in.StampID != "" && mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), indexes.InquiryStampIndex) {
			return models.Inquiry{}, ErrStampUsed
		}
		return models.Inquiry{}, err
	}
	return in, nil
}

// MarkSent records successful delivery.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	return s.setStatus(ctx, id, models.InquirySent, "")
}

// MarkFailed records a delivery failure with its reason.
func (s *Store) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	return s.setStatus(ctx, id, models.InquiryFailed, reason)
}

func (s *Store) setStatus(ctx context.Context, id primitive.ObjectID, status, reason string) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if reason != "" {
		set["error"] = reason
	} else {
		update["$unset"] = bson.M{"error": ""}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByReference loads an inquiry by its reference.
func (s *Store) GetByReference(ctx context.Context, ref string) (*models.Inquiry, error) {
	var in models.Inquiry
	err := s.c.FindOne(ctx, bson.M{"reference": ref}).Decode(&in)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// ListByStatus returns one page of inquiries in status, newest first.
// page is 1-based.
func (s *Store) ListByStatus(ctx context.Context, status string, limit, page int64) ([]models.Inquiry, error) {
	opts := storeutil.Paginate(limit, page).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := s.c.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Inquiry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountSince returns how many inquiries were created from ip since t.
func (s *Store) CountSince(ctx context.Context, ip string, t time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"client_ip":  ip,
		"created_at": bson.M{"$gte": t},
	})
}

// DeleteOlderThan removes inquiries created before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

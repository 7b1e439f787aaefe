// Package audit stores security and contact events for review and
// retention.
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/coconsult/internal/app/store/storeutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Event categories
const (
	CategoryAuth    = "auth"
	CategoryContact = "contact"
)

// Auth event types
const (
	EventLoginSuccess     = "login_success"
	EventLoginFailed      = "login_failed"
	EventLoginRateLimited = "login_rate_limited"
	EventLoginLockedOut   = "login_locked_out"
	EventRegisterSuccess  = "register_success"
	EventRegisterFailed   = "register_failed"
	EventLogout           = "logout"
)

// Contact event types
const (
	EventInquirySent     = "inquiry_sent"
	EventInquiryFailed   = "inquiry_failed"
	EventInquiryRejected = "inquiry_rejected"
	EventSubscribed      = "subscribed"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who. UserID is the remote auth service's id, not a local ObjectID.
	UserID string `bson:"user_id,omitempty"`
	Email  string `bson:"email,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter selects audit events. Empty fields match everything; Since
// is inclusive and Until exclusive.
type QueryFilter struct {
	Email     string
	Category  string
	EventType string
	Since     time.Time
	Until     time.Time

	Limit int64 // page size, storeutil.DefaultLimit when zero
	Page  int64 // 1-based
}

func (f QueryFilter) match() bson.D {
	q := bson.D{}
	for _, kv := range []struct{ key, val string }{
		{"email", f.Email},
		{"category", f.Category},
		{"event_type", f.EventType},
	} {
		if kv.val != "" {
			q = append(q, bson.E{Key: kv.key, Value: kv.val})
		}
	}

	created := bson.D{}
	if !f.Since.IsZero() {
		created = append(created, bson.E{Key: "$gte", Value: f.Since})
	}
	if !f.Until.IsZero() {
		created = append(created, bson.E{Key: "$lt", Value: f.Until})
	}
	if len(created) > 0 {
		q = append(q, bson.E{Key: "created_at", Value: created})
	}
	return q
}

// CollectionName is the MongoDB collection backing the store.
const CollectionName = "audit_logs"

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Log records event, assigning its ID and CreatedAt when unset.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns one page of matching events, newest first.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Event, error) {
	opts := storeutil.Paginate(f.Limit, f.Page).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := s.c.Find(ctx, f.match(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of matching events, ignoring paging.
func (s *Store) Count(ctx context.Context, f QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.match())
}

// DeleteOlderThan removes events created before cutoff. It is the audit
// retention job's Pruner.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

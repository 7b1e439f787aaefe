// internal/app/store/ratelimit/store.go
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Scopes partition the counters so a login email and a contact-form IP
// never share a record.
const (
	ScopeLogin    = "login"
	ScopeRegister = "register"
)

// Attempt tracks failed attempts for one scoped key.
type Attempt struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Scope        string             `bson:"scope"`
	Key          string             `bson:"key"`           // normalized (lowercase, trimmed)
	AttemptCount int                `bson:"attempt_count"` // failures in current window
	WindowStart  time.Time          `bson:"window_start"`
	LockedUntil  *time.Time         `bson:"locked_until"`
	LastAttempt  time.Time          `bson:"last_attempt"` // drives TTL cleanup
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// Limits configures a Store.
type Limits struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

// Decision is the outcome of Check.
type Decision struct {
	Allowed     bool
	Remaining   int        // -1 while locked
	LockedUntil *time.Time // nil unless locked
}

// CollectionName is the MongoDB collection backing the store.
const CollectionName = "rate_limits"

// Store manages failed-attempt counters.
type Store struct {
	c      *mongo.Collection
	limits Limits
	now    func() time.Time
}

// New creates a rate limit Store.
func New(db *mongo.Database, limits Limits) *Store {
	return &Store{
		c:      db.Collection(CollectionName),
		limits: limits,
		now:    time.Now,
	}
}

// WithClock replaces the store's time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func filterFor(scope, key string) bson.M {
	return bson.M{"scope": scope, "key": normalizeKey(key)}
}

// Check reports whether another attempt is allowed for key in scope.
// Lookup errors fail open.
func (s *Store) Check(ctx context.Context, scope, key string) Decision {
	now := s.now()
	full := Decision{Allowed: true, Remaining: s.limits.MaxAttempts}

	var a Attempt
	if err := s.c.FindOne(ctx, filterFor(scope, key)).Decode(&a); err != nil {
		return full
	}

	if a.LockedUntil != nil && now.Before(*a.LockedUntil) {
		return Decision{Allowed: false, Remaining: -1, LockedUntil: a.LockedUntil}
	}
	if now.After(a.WindowStart.Add(s.limits.Window)) {
		return full
	}

	remaining := s.limits.MaxAttempts - a.AttemptCount
	if remaining <= 0 {
		return Decision{Allowed: false, Remaining: 0}
	}
	return Decision{Allowed: true, Remaining: remaining}
}

// Fail records one failed attempt. It reports the lockout expiry when this
// failure reached the limit.
func (s *Store) Fail(ctx context.Context, scope, key string) (lockedUntil *time.Time, err error) {
	now := s.now()
	normalized := normalizeKey(key)

	var a Attempt
	err = s.c.FindOne(ctx, filterFor(scope, key)).Decode(&a)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		a = Attempt{
			ID:          primitive.NewObjectID(),
			Scope:       scope,
			Key:         normalized,
			WindowStart: now,
			CreatedAt:   now,
		}
	case err != nil:
		return nil, err
	}

	if now.After(a.WindowStart.Add(s.limits.Window)) {
		a.AttemptCount = 0
		a.WindowStart = now
		a.LockedUntil = nil
	}
	a.AttemptCount++
	a.LastAttempt = now
	a.UpdatedAt = now

	if a.AttemptCount >= s.limits.MaxAttempts {
		until := now.Add(s.limits.Lockout)
		a.LockedUntil = &until
		lockedUntil = &until
	}

	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": a.ID},
		bson.M{
			"$set": bson.M{
				"scope":         a.Scope,
				"key":           a.Key,
				"attempt_count": a.AttemptCount,
				"window_start":  a.WindowStart,
				"locked_until":  a.LockedUntil,
				"last_attempt":  a.LastAttempt,
				"updated_at":    a.UpdatedAt,
			},
			"$setOnInsert": bson.M{"created_at": a.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	return lockedUntil, nil
}

// Reset clears the counter for key, e.g. after a successful login.
func (s *Store) Reset(ctx context.Context, scope, key string) error {
	_, err := s.c.DeleteOne(ctx, filterFor(scope, key))
	return err
}

// Get returns the attempt record for key, or nil when none exists.
func (s *Store) Get(ctx context.Context, scope, key string) (*Attempt, error) {
	var a Attempt
	err := s.c.FindOne(ctx, filterFor(scope, key)).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// PurgeStale removes counters whose last attempt is older than cutoff and
// that are not currently locked. It returns the number removed.
func (s *Store) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"last_attempt": bson.M{"$lt": cutoff},
		"$or": bson.A{
			bson.M{"locked_until": nil},
			bson.M{"locked_until": bson.M{"$lt": s.now()}},
		},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

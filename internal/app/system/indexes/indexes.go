// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// InquiryStampIndex enforces one inquiry per contact form stamp.
const InquiryStampIndex = "idx_inquiry_stamp"

// Set is the desired index set of one collection.
type Set struct {
	Collection string
	Models     []mongo.IndexModel
}

// Sets lists every collection's indexes.
func Sets() []Set {
	return []Set{
		{Collection: "inquiries", Models: []mongo.IndexModel{
			// Reference quoted in the notification email
			{
				Keys:    bson.D{{Key: "reference", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_inquiry_reference"),
			},
			// Failure review
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_inquiry_status_created"),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_inquiry_email"),
			},
			// Hourly per-IP submission limit
			{
				Keys:    bson.D{{Key: "client_ip", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_inquiry_ip_created"),
			},
			// Form stamps are single-use; inquiries stored without one are exempt
			{
				Keys: bson.D{{Key: "stamp_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "stamp_id", Value: bson.D{{Key: "$type", Value: "string"}}}}).
					SetName(InquiryStampIndex),
			},
		}},
		{Collection: "subscribers", Models: []mongo.IndexModel{
			// One document per folded address
			{
				Keys:    bson.D{{Key: "email_ci", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_subscriber_email_ci"),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_subscriber_created"),
			},
		}},
		{Collection: "audit_logs", Models: []mongo.IndexModel{
			// Retention sweeps
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_audit_created"),
			},
			{
				Keys:    bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_audit_category"),
			},
			{
				Keys:    bson.D{{Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_audit_event_type"),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_audit_email"),
			},
		}},
		{Collection: "rate_limits", Models: []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "scope", Value: 1}, {Key: "key", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_ratelimit_scope_key"),
			},
			// Stale counters expire after a day
			{
				Keys:    bson.D{{Key: "last_attempt", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(86400).SetName("idx_ratelimit_ttl"),
			},
		}},
	}
}

// EnsureAll reconciles every Set. It keeps going after a failure so all
// problems are reported together, and startup fails on any of them.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string
	for _, set := range Sets() {
		if err := Reconcile(ctx, db.Collection(set.Collection), set.Models, logger); err != nil {
			problems = append(problems, set.Collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// existingIndex is the part of listIndexes output that is compared.
type existingIndex struct {
	Name        string `bson:"name"`
	Key         bson.D `bson:"key"`
	Unique      *bool  `bson:"unique,omitempty"`
	ExpireAfter *int64 `bson:"expireAfterSeconds,omitempty"`
}

// desired is an IndexModel reduced to what Reconcile compares.
type desired struct {
	model       mongo.IndexModel
	name        string
	sig         string
	unique      bool
	expireAfter int64 // -1 when not a TTL index
}

func describe(m mongo.IndexModel) (desired, error) {
	keys, ok := m.Keys.(bson.D)
	if !ok {
		return desired{}, fmt.Errorf("index keys must be bson.D, got %T", m.Keys)
	}
	d := desired{model: m, sig: keySig(keys), expireAfter: -1}
	if o := m.Options; o != nil {
		if o.Name != nil {
			d.name = *o.Name
		}
		d.unique = o.Unique != nil && *o.Unique
		if o.ExpireAfterSeconds != nil {
			d.expireAfter = int64(*o.ExpireAfterSeconds)
		}
	}
	return d, nil
}

func (e existingIndex) matches(d desired) bool {
	unique := e.Unique != nil && *e.Unique
	expire := int64(-1)
	if e.ExpireAfter != nil {
		expire = *e.ExpireAfter
	}
	return unique == d.unique && expire == d.expireAfter
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// Reconcile makes coll carry models. An index with the same key pattern is
// reused when its unique and TTL options match, and dropped and recreated
// when they don't. Indexes not named in models are left alone.
func Reconcile(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		return err
	}

	var errs []string
	for _, m := range models {
		d, err := describe(m)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		log := logger.With(
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
		)

		ex, found := existing[d.sig]
		switch {
		case found && ex.matches(d):
			log.Debug("index up to date", zap.String("existing_name", ex.Name))
			continue
		case found:
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s: %v", d.name, ex.Name, err))
				continue
			}
			log.Info("dropped index with outdated options", zap.String("existing_name", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, d.model); err != nil {
			if d.unique && mongo.IsDuplicateKeyError(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index, duplicates present", d.name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", d.name, err))
			}
			log.Warn("index create failed", zap.Error(err))
			continue
		}
		log.Info("index created", zap.Bool("unique", d.unique), zap.Int64("expire_after_seconds", d.expireAfter))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// listIndexes returns coll's indexes keyed by key pattern. A collection
// that does not exist yet has none.
func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		var ce mongo.CommandError
		if errors.As(err, &ce) && ce.Code == 26 { // NamespaceNotFound
			return map[string]existingIndex{}, nil
		}
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer cur.Close(ctx)

	out := make(map[string]existingIndex)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			return nil, fmt.Errorf("decode index: %w", err)
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// Package validators attaches JSON-Schema validators to the collections
// that hold user-submitted documents.
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/coconsult/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes EnsureAll tolerates.
const (
	codeNamespaceExists = 48
	codeCommandNotFound = 59
	codeNotImplemented  = 115
)

// Collection is a collection and its validator. A nil Schema only makes
// sure the collection exists.
type Collection struct {
	Name   string
	Schema bson.M
}

// Collections lists what EnsureAll sets up.
func Collections() []Collection {
	return []Collection{
		{Name: "inquiries", Schema: inquirySchema},
		{Name: "subscribers", Schema: subscriberSchema},
		{Name: "audit_logs"},
		{Name: "rate_limits"},
	}
}

// EnsureAll creates missing collections and applies their validators.
// Servers without collMod support (some DocumentDB versions) keep the
// collections unvalidated.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	var problems []string
	for _, c := range Collections() {
		log := logger.With(zap.String("collection", c.Name))

		if !have[c.Name] {
			err := db.CreateCollection(ctx, c.Name)
			switch {
			case err == nil:
				log.Info("created collection")
			case hasCode(err, codeNamespaceExists):
				// created concurrently by another instance
			default:
				problems = append(problems, c.Name+": "+err.Error())
				continue
			}
		}

		if c.Schema == nil {
			continue
		}
		if err := apply(ctx, db, c); err != nil {
			if unsupported(err) {
				log.Info("validator skipped, not supported by server")
				continue
			}
			problems = append(problems, c.Name+": "+err.Error())
			continue
		}
		log.Info("validator applied")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// apply sets c's validator. Documents already stored are not rechecked,
// and updates to documents that never matched are let through.
func apply(ctx context.Context, db *mongo.Database, c Collection) error {
	return db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: c.Name},
		{Key: "validator", Value: c.Schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}).Err()
}

func hasCode(err error, codes ...int32) bool {
	var ce mongo.CommandError
	if !errors.As(err, &ce) {
		return false
	}
	for _, c := range codes {
		if ce.Code == c {
			return true
		}
	}
	return false
}

func unsupported(err error) bool {
	if err == nil {
		return false
	}
	if hasCode(err, codeCommandNotFound, codeNotImplemented) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "no such command") ||
		strings.Contains(s, "not implemented") ||
		strings.Contains(s, "not supported")
}

var inquirySchema = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"reference", "email", "params", "provider", "status", "created_at"},
		"properties": bson.M{
			"reference":  bson.M{"bsonType": "string", "minLength": 1},
			"email":      bson.M{"bsonType": "string", "pattern": `^[^@\s]+@[^@\s]+$`},
			"params":     bson.M{"bsonType": bson.A{"object", "null"}},
			"provider":   bson.M{"bsonType": "string", "minLength": 1},
			"status":     bson.M{"enum": bson.A{models.InquiryPending, models.InquirySent, models.InquiryFailed}},
			"error":      bson.M{"bsonType": "string"},
			"client_ip":  bson.M{"bsonType": "string"},
			"stamp_id":   bson.M{"bsonType": "string", "minLength": 1},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}

var subscriberSchema = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"email", "email_ci", "signups", "created_at"},
		"properties": bson.M{
			"email":        bson.M{"bsonType": "string", "minLength": 3},
			"email_ci":     bson.M{"bsonType": "string", "minLength": 3},
			"source":       bson.M{"bsonType": "string"},
			"signups":      bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
			"created_at":   bson.M{"bsonType": "date"},
			"last_seen_at": bson.M{"bsonType": "date"},
		},
	},
}

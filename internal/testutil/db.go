// Package testutil holds the shared test plumbing: a per-test MongoDB
// database, request builders for session and CSRF state, and assertions.
package testutil

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	// DefaultMongoURI is used unless COCONSULT_TEST_MONGO_URI is set.
	DefaultMongoURI = "mongodb://localhost:27017"
	// DBPrefix starts every per-test database name.
	DBPrefix = "coconsult_test_"

	// MongoDB rejects database names longer than 63 bytes.
	maxDBName = 63
)

var (
	sharedOnce   sync.Once
	sharedClient *mongo.Client
	sharedErr    error
)

// MongoURI returns the server the database tests run against.
func MongoURI() string {
	if uri := os.Getenv("COCONSULT_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return DefaultMongoURI
}

func connect() (*mongo.Client, error) {
	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Packages run in parallel, each with its own database.
		opts := options.Client().
			ApplyURI(MongoURI()).
			SetMaxPoolSize(200).
			SetMinPoolSize(10).
			SetMaxConnIdleTime(30 * time.Second).
			SetServerSelectionTimeout(10 * time.Second)

		sharedClient, sharedErr = mongo.Connect(ctx, opts)
		if sharedErr == nil {
			sharedErr = sharedClient.Ping(ctx, nil)
		}
	})
	return sharedClient, sharedErr
}

// SetupTestDB gives t an empty database with the production indexes in
// place. The database is named after the test and dropped on cleanup.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := connect()
	if err != nil {
		t.Fatalf("connect to test MongoDB at %s: %v", MongoURI(), err)
	}

	db := client.Database(DBName(t.Name()))

	ctx, cancel := TestContext()
	defer cancel()

	// A crashed run can leave the previous database behind.
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop stale test database: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop test database %s: %v", db.Name(), err)
		}
	})
	return db
}

// DBName maps a test name to a valid database name. Names that would be
// too long are cut and suffixed with a hash so subtests stay distinct.
func DBName(testName string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, testName)

	name := DBPrefix + safe
	if len(name) <= maxDBName {
		return name
	}
	sum := sha1.Sum([]byte(testName))
	tag := hex.EncodeToString(sum[:4])
	return name[:maxDBName-len(tag)-1] + "_" + tag
}

// TestContext returns a context for test database operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

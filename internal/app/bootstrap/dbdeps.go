// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/coconsult/internal/app/system/emailer"
	"github.com/dalemusser/coconsult/internal/app/system/events"
	"github.com/dalemusser/coconsult/internal/app/system/mailer"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. The Shutdown
// hook closes these connections when the application terminates.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis client; nil when refresh signals stay in process
	Redis *redis.Client

	// Bus carries file manager refresh signals (Redis or in memory)
	Bus events.Bus

	// Mailer is the SMTP transport used by the smtp email provider
	Mailer *mailer.Mailer

	// Email delivers contact inquiries and newsletter notifications
	Email emailer.Sender
}

// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/dalemusser/coconsult/internal/app/system/emailer"
	"github.com/dalemusser/coconsult/internal/app/system/events"
	"github.com/dalemusser/coconsult/internal/app/system/indexes"
	"github.com/dalemusser/coconsult/internal/app/system/mailer"
	"github.com/dalemusser/coconsult/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectDB connects to databases or other backends.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema and
// Startup. Besides MongoDB it sets up the optional Redis connection behind the
// refresh-signal bus and the configured email provider, so a misconfigured
// provider stops startup instead of failing on the first inquiry.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
	}

	// Refresh-signal bus
	if appCfg.RedisURL != "" {
		opts, err := redis.ParseURL(appCfg.RedisURL)
		if err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("invalid redis_url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			_ = client.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("connect to Redis: %w", err)
		}
		bus, err := events.NewRedisBus(ctx, rdb, appCfg.RedisChannel, logger)
		if err != nil {
			_ = rdb.Close()
			_ = client.Disconnect(ctx)
			return DBDeps{}, err
		}
		deps.Redis = rdb
		deps.Bus = bus
		logger.Info("refresh signals shared over Redis",
			zap.String("addr", opts.Addr),
			zap.String("channel", appCfg.RedisChannel))
	} else {
		deps.Bus = events.NewMemoryBus()
		logger.Info("refresh signals kept in process")
	}

	// Initialize SMTP mailer (used by the smtp provider)
	deps.Mailer = mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	sender, err := emailer.New(emailConfig(appCfg), deps.Mailer, logger)
	if err != nil {
		_ = deps.Bus.Close()
		if deps.Redis != nil {
			_ = deps.Redis.Close()
		}
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("email provider: %w", err)
	}
	deps.Email = sender
	logger.Info("initialized email provider", zap.String("provider", sender.Name()))

	return deps, nil
}

// emailConfig maps the app config onto the emailer settings.
func emailConfig(appCfg AppConfig) emailer.Config {
	from := appCfg.MailFrom
	if appCfg.MailFromName != "" && from != "" {
		from = (&mail.Address{Name: appCfg.MailFromName, Address: appCfg.MailFrom}).String()
	}
	return emailer.Config{
		Provider: appCfg.EmailProvider,
		AppName:  appCfg.MailFromName,
		To:       appCfg.ContactTo,
		EmailJS: emailer.EmailJSConfig{
			APIURL:                 appCfg.EmailJSAPIURL,
			ServiceID:              appCfg.EmailJSServiceID,
			TemplateID:             appCfg.EmailJSTemplateID,
			SubscriptionTemplateID: appCfg.EmailJSSubscriptionTemplateID,
			PublicKey:              appCfg.EmailJSPublicKey,
			PrivateKey:             appCfg.EmailJSPrivateKey,
			Timeout:                appCfg.RemoteTimeout,
		},
		Resend: emailer.ResendConfig{
			APIKey:     appCfg.ResendAPIKey,
			From:       from,
			AudienceID: appCfg.ResendAudienceID,
		},
	}
}

// EnsureSchema sets up collections, validators and indexes.
//
// This runs after ConnectDB succeeds but before Startup and before the HTTP
// handler is built. The context has a timeout based on
// coreCfg.IndexBootTimeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Ensure collections exist and attach JSON-Schema validators.
	// This runs first so indexes can be created on existing collections.
	logger.Info("ensuring collections and validators")
	if err := validators.EnsureAll(ctx, db, logger); err != nil {
		logger.Error("failed to ensure validators", zap.Error(err))
		return err
	}

	// Ensure database indexes for query performance.
	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, db, logger); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}

// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/coconsult/internal/app/resources"
	"github.com/dalemusser/coconsult/internal/app/store/audit"
	"github.com/dalemusser/coconsult/internal/app/store/inquiries"
	"github.com/dalemusser/coconsult/internal/app/store/ratelimit"
	"github.com/dalemusser/coconsult/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// It registers the shared templates and starts the background retention
// jobs. Returning a non-nil error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	// Note: Indexes are created in EnsureSchema via indexes.EnsureAll().
	// Store-level EnsureIndexes() calls are not needed here.

	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	db := deps.MongoDatabase
	taskRunner.Register(tasks.InquiryRetentionJob(inquiries.New(db), appCfg.InquiryRetention, logger))
	taskRunner.Register(tasks.AuditRetentionJob(audit.New(db), appCfg.AuditRetention, logger))

	if appCfg.RateLimitEnabled {
		rl := ratelimit.New(db, rateLimits(appCfg))
		taskRunner.Register(tasks.RateLimitCleanupJob(tasks.PrunerFunc(rl.PurgeStale), logger))
	}

	taskRunner.Start()
}

func rateLimits(appCfg AppConfig) ratelimit.Limits {
	return ratelimit.Limits{
		MaxAttempts: appCfg.RateLimitLoginAttempts,
		Window:      appCfg.RateLimitLoginWindow,
		Lockout:     appCfg.RateLimitLoginLockout,
	}
}

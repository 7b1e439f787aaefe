// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pruner deletes records older than a cutoff and reports how many went.
// The inquiry and audit stores satisfy it; wrap ratelimit.Store.PurgeStale
// in a PrunerFunc.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PrunerFunc adapts a function to Pruner.
type PrunerFunc func(ctx context.Context, cutoff time.Time) (int64, error)

// DeleteOlderThan calls f.
func (f PrunerFunc) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f(ctx, cutoff)
}

// retentionTimeout bounds one pruning pass.
const retentionTimeout = 5 * time.Minute

// RetentionJob creates a job that deletes records older than maxAge.
// A non-positive maxAge keeps records forever and the job does nothing.
func RetentionJob(name string, interval, maxAge time.Duration, p Pruner, logger *zap.Logger) Job {
	return retentionJob(name, interval, maxAge, p, logger, time.Now)
}

func retentionJob(name string, interval, maxAge time.Duration, p Pruner, logger *zap.Logger, now func() time.Time) Job {
	return Job{
		Name:     name,
		Interval: interval,
		Timeout:  retentionTimeout,
		Run: func(ctx context.Context) error {
			if maxAge <= 0 || p == nil {
				return nil
			}
			cutoff := now().Add(-maxAge)
			deleted, err := p.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned old records",
					zap.String("job", name),
					zap.Int64("deleted", deleted),
					zap.Time("cutoff", cutoff))
			}
			return nil
		},
	}
}

// InquiryRetentionJob removes stored contact inquiries past retention.
func InquiryRetentionJob(p Pruner, retention time.Duration, logger *zap.Logger) Job {
	return RetentionJob("inquiry-retention", 6*time.Hour, retention, p, logger)
}

// AuditRetentionJob removes audit events past retention.
func AuditRetentionJob(p Pruner, retention time.Duration, logger *zap.Logger) Job {
	return RetentionJob("audit-retention", 24*time.Hour, retention, p, logger)
}

// RateLimitCleanupJob removes counters that have not seen an attempt for a
// day. The TTL index normally does this; the job covers deployments where
// TTL monitors are disabled.
func RateLimitCleanupJob(p Pruner, logger *zap.Logger) Job {
	return RetentionJob("rate-limit-cleanup", time.Hour, 24*time.Hour, p, logger)
}

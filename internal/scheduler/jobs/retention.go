package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/optionpulse/pkg/logger"
)

// MetricsPruner deletes stored records older than cutoff
type MetricsPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob keeps only the last Retention worth of records
type RetentionJob struct {
	pruner    MetricsPruner
	retention time.Duration
	schedule  string
	logger    *logger.Logger
	now       func() time.Time
}

// NewRetentionJob creates the metrics retention job
func NewRetentionJob(pruner MetricsPruner, retention time.Duration, schedule string, log *logger.Logger) *RetentionJob {
	return &RetentionJob{
		pruner:    pruner,
		retention: retention,
		schedule:  schedule,
		logger:    log,
		now:       time.Now,
	}
}

func (j *RetentionJob) Name() string {
	return "metrics_retention"
}

// Schedule defaults to hourly
func (j *RetentionJob) Schedule() string {
	if j.schedule == "" {
		return "0 0 * * * *"
	}
	return j.schedule
}

// Run deletes everything recorded before now − retention
func (j *RetentionJob) Run(ctx context.Context) error {
	if j.retention <= 0 {
		return fmt.Errorf("retention must be positive, got %s", j.retention)
	}

	cutoff := j.now().Add(-j.retention)
	deleted, err := j.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune chain metrics: %w", err)
	}

	if deleted > 0 {
		j.logger.WithFields(map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("Retention cleanup completed")
	}
	return nil
}

package jobs

import (
	"context"

	"github.com/wonny/optionpulse/internal/pipeline"
	"github.com/wonny/optionpulse/pkg/logger"
)

// SignalRunner runs every configured symbol once
type SignalRunner interface {
	RunAll(ctx context.Context) ([]*pipeline.RunResult, error)
}

// OptionSignalsJob fetches and derives option chain signals for all symbols
type OptionSignalsJob struct {
	runner   SignalRunner
	schedule string
	logger   *logger.Logger
}

// NewOptionSignalsJob creates the periodic derivation job
func NewOptionSignalsJob(runner SignalRunner, schedule string, log *logger.Logger) *OptionSignalsJob {
	return &OptionSignalsJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
	}
}

func (j *OptionSignalsJob) Name() string {
	return "option_signals"
}

// Schedule defaults to every 5 minutes
func (j *OptionSignalsJob) Schedule() string {
	if j.schedule == "" {
		return "0 */5 * * * *"
	}
	return j.schedule
}

// Run executes one pass over all symbols. Per-symbol retries happen inside RunAll.
func (j *OptionSignalsJob) Run(ctx context.Context) error {
	results, err := j.runner.RunAll(ctx)

	saved := 0
	for _, r := range results {
		saved += len(r.Records)
	}
	j.logger.WithFields(map[string]interface{}{
		"symbols": len(results),
		"records": saved,
	}).Info("Option signals run finished")

	return err
}

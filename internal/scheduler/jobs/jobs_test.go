package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/internal/pipeline"
	"github.com/wonny/optionpulse/pkg/logger"
)

type stubRunner struct {
	results []*pipeline.RunResult
	err     error
}

func (s *stubRunner) RunAll(context.Context) ([]*pipeline.RunResult, error) {
	return s.results, s.err
}

func TestOptionSignalsJob(t *testing.T) {
	runner := &stubRunner{results: []*pipeline.RunResult{{
		RunID:   uuid.New(),
		Symbol:  "NIFTY",
		Records: []*contracts.ChainMetricsRecord{{Symbol: "NIFTY"}},
	}}}
	job := NewOptionSignalsJob(runner, "", logger.Nop())

	assert.Equal(t, "option_signals", job.Name())
	assert.Equal(t, "0 */5 * * * *", job.Schedule())
	assert.NoError(t, job.Run(context.Background()))

	runner.err = errors.New("1 of 2 symbols failed")
	assert.Error(t, job.Run(context.Background()))

	assert.Equal(t, "0 */1 * * * *", NewOptionSignalsJob(runner, "0 */1 * * * *", logger.Nop()).Schedule())
}

type stubPruner struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (s *stubPruner) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, s.err
}

func TestRetentionJob(t *testing.T) {
	now := time.Date(2024, 1, 19, 15, 30, 0, 0, time.UTC)
	pruner := &stubPruner{deleted: 12}

	job := NewRetentionJob(pruner, 24*time.Hour, "", logger.Nop())
	job.now = func() time.Time { return now }

	assert.Equal(t, "metrics_retention", job.Name())
	assert.Equal(t, "0 0 * * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-24*time.Hour), pruner.cutoff)

	pruner.err = errors.New("db down")
	assert.ErrorContains(t, job.Run(context.Background()), "db down")

	zero := NewRetentionJob(pruner, 0, "", logger.Nop())
	assert.Error(t, zero.Run(context.Background()))
}

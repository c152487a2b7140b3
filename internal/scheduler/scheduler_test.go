package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optionpulse/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	calls    int32
	failN    int32 // first failN calls fail
	block    chan struct{}
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n <= atomic.LoadInt32(&j.failN) {
		return errors.New("boom")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.Nop()).WithRetry(1, time.Millisecond)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 */5 * * * *"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@hourly"}))

	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@hourly"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "c", schedule: "not a cron"}))

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@hourly"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Empty(t, s.cron.Entries())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunJobNow_RetriesAndRecordsHistory(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "flaky", schedule: "@hourly", failN: 1}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJobNow(context.Background(), "flaky"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&job.calls))

	history, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
}

func TestRunJobNow_FailsAfterRetries(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "broken", schedule: "@hourly", failN: 10}
	require.NoError(t, s.AddJob(job))

	err := s.RunJobNow(context.Background(), "broken")
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&job.calls))

	stats := s.GetJobStats()["broken"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, "boom", stats.LastError)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
	assert.Equal(t, 0.0, stats.SuccessRate)
	assert.Equal(t, 1, stats.ConsecutiveFailures)

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	assert.Equal(t, 2, history.Results[0].Attempts)
}

func TestRunJobNow_UnknownJob(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.RunJobNow(context.Background(), "missing"))
	assert.Error(t, s.RunJob("missing"))
}

func TestRunJob_SkipsOverlappingTrigger(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "slow", schedule: "@hourly", block: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("slow"))
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.calls) == 1
	}, time.Second, 5*time.Millisecond)

	err := s.RunJobNow(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrJobRunning)
	assert.True(t, s.GetJobStats()["slow"].Running)

	close(job.block)
	require.Eventually(t, func() bool {
		return !s.GetJobStats()["slow"].Running
	}, time.Second, 5*time.Millisecond)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 */5 * * * *"}))

	s.Start()
	next, err := s.NextRun("a")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))
	s.Stop()

	_, err = s.NextRun("missing")
	assert.Error(t, err)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < MaxHistory+5; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, MaxHistory)
	assert.Equal(t, MaxHistory/2, h.Failures())
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
	assert.Zero(t, h.ConsecutiveFailures())

	h.AddResult(JobResult{Success: false, Error: "a"})
	h.AddResult(JobResult{Success: false, Error: "b"})
	assert.Equal(t, 2, h.ConsecutiveFailures())

	last, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "b", last.Error)
	_, ok = h.LastWhere(true)
	assert.True(t, ok)

	empty := &JobHistory{}
	_, ok = empty.Latest()
	assert.False(t, ok)
	assert.Zero(t, empty.SuccessRate())
}

package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ordercast/pkg/config"
	"github.com/wonny/ordercast/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // 앞의 n 번 실패
	calls    atomic.Int32
	started  chan struct{}
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if j.started != nil && n == 1 {
		close(j.started)
	}
	if n <= j.failures {
		return errors.New("store unavailable")
	}
	return nil
}

func testScheduler(retries int, delay time.Duration) *Scheduler {
	log := logger.NewWithWriter(&config.Config{Env: "development", LogLevel: "error"}, io.Discard)
	return NewWithConfig(Config{MaxRetries: retries, RetryDelay: delay, JobTimeout: time.Second}, log)
}

func TestAddJob(t *testing.T) {
	s := testScheduler(0, 0)

	require.NoError(t, s.AddJob(&fakeJob{name: "order_prediction", schedule: "0 0 6 * * *"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "order_prediction", schedule: "0 0 6 * * *"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "bad", schedule: "every morning"}))

	require.NoError(t, s.AddJob(&fakeJob{name: "accuracy_reconcile", schedule: "0 30 5 * * *"}))
	assert.Equal(t, []string{"accuracy_reconcile", "order_prediction"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := testScheduler(0, 0)
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	_, err := s.NextRun("a")
	assert.Error(t, err)
}

func TestRunJobSync_Retries(t *testing.T) {
	s := testScheduler(2, time.Millisecond)
	flaky := &fakeJob{name: "flaky", schedule: "@daily", failures: 1}
	broken := &fakeJob{name: "broken", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(flaky))
	require.NoError(t, s.AddJob(broken))

	res, err := s.RunJobSync("flaky")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, int32(2), flaky.calls.Load())

	res, err = s.RunJobSync("broken")
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "store unavailable", res.Error)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, int32(3), broken.calls.Load())

	_, err = s.RunJobSync("missing")
	assert.Error(t, err)

	stats := s.GetJobStats()
	assert.Equal(t, 1, stats["flaky"].SuccessCount)
	assert.Equal(t, 1.0, stats["flaky"].SuccessRate)
	assert.Equal(t, 1, stats["broken"].FailureCount)
	require.NotNil(t, stats["broken"].LastFailure)
	assert.Nil(t, stats["broken"].LastSuccess)

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	assert.Len(t, history.Failed(), 1)
}

func TestStopCancelsRetryWait(t *testing.T) {
	s := testScheduler(3, time.Hour)
	job := &fakeJob{name: "slow", schedule: "@daily", failures: 100, started: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	s.Start()
	next, err := s.NextRun("slow")
	require.NoError(t, err)
	assert.False(t, next.IsZero())

	require.NoError(t, s.RunJob("slow"))
	<-job.started

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not cancel the retry wait")
	}

	history, err := s.GetJobHistory("slow")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.Contains(t, history.Results[0].Error, "scheduler stopped")
	assert.Equal(t, int32(1), job.calls.Load())
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.SuccessRate())
	assert.Empty(t, h.Latest(5))
	assert.Nil(t, h.LastSuccess())

	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		h.AddResult(JobResult{JobName: "order_prediction", StartTime: base.AddDate(0, 0, i), Success: i%4 != 0})
	}
	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.Latest(3), 3)
	assert.Len(t, h.Failed(), 25)
	assert.InDelta(t, 0.75, h.SuccessRate(), 1e-9)

	// 마지막 실행(119)은 성공
	require.NotNil(t, h.LastSuccess())
	assert.Equal(t, base.AddDate(0, 0, 119), *h.LastSuccess())

	// 실패가 이어져도 직전 성공 시각 유지
	h.AddResult(JobResult{JobName: "order_prediction", StartTime: base.AddDate(0, 0, 120), Success: false})
	require.NotNil(t, h.LastSuccess())
	assert.Equal(t, base.AddDate(0, 0, 119), *h.LastSuccess())
}

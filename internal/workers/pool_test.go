package workers

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testJob struct {
	id      string
	jobType string
	fn      func(ctx context.Context) error
}

func (j *testJob) Execute(ctx context.Context) error { return j.fn(ctx) }
func (j *testJob) ID() string                        { return j.id }
func (j *testJob) Type() string                      { return j.jobType }

func newTestJob(id string, fn func(ctx context.Context) error) *testJob {
	return &testJob{id: id, jobType: "test", fn: fn}
}

func TestPoolExecutesAllJobs(t *testing.T) {
	pool := New(Config{Size: 4, QueueSize: 16})
	pool.Start()

	var executed atomic.Int32
	for i := 0; i < 10; i++ {
		job := newTestJob(fmt.Sprintf("job-%d", i), func(ctx context.Context) error {
			executed.Add(1)
			return nil
		})
		require.NoError(t, pool.Submit(job))
	}

	pool.Close()
	go pool.Wait()

	count := 0
	for result := range pool.Results() {
		assert.NoError(t, result.Error)
		assert.Equal(t, "test", result.JobType)
		count++
	}

	assert.Equal(t, 10, count)
	assert.Equal(t, int32(10), executed.Load())
}

func TestPoolReportsJobErrors(t *testing.T) {
	pool := New(Config{Size: 1, QueueSize: 4})
	pool.Start()

	wantErr := fmt.Errorf("target unreachable")
	require.NoError(t, pool.Submit(newTestJob("bad", func(ctx context.Context) error {
		return wantErr
	})))
	require.NoError(t, pool.Submit(newTestJob("good", func(ctx context.Context) error {
		return nil
	})))

	pool.Close()
	go pool.Wait()

	results := make(map[string]error)
	for result := range pool.Results() {
		results[result.JobID] = result.Error
	}

	require.Len(t, results, 2)
	assert.Equal(t, wantErr, results["bad"])
	assert.NoError(t, results["good"])
}

func TestPoolSubmitAfterClose(t *testing.T) {
	pool := New(DefaultConfig())
	pool.Start()
	require.NoError(t, pool.Shutdown())

	err := pool.Submit(newTestJob("late", func(ctx context.Context) error { return nil }))
	require.Error(t, err)
}

func TestPoolQueueFull(t *testing.T) {
	pool := New(Config{Size: 1, QueueSize: 1})
	// Not started, so nothing drains the queue.

	require.NoError(t, pool.Submit(newTestJob("first", func(ctx context.Context) error { return nil })))
	err := pool.Submit(newTestJob("second", func(ctx context.Context) error { return nil }))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
}

func TestPoolShutdownCancelsContext(t *testing.T) {
	pool := New(Config{Size: 1, QueueSize: 4, ShutdownTimeout: 5 * time.Second})
	pool.Start()

	started := make(chan struct{})
	canceled := make(chan struct{})
	require.NoError(t, pool.Submit(newTestJob("blocking", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(canceled)
		return ctx.Err()
	})))

	<-started
	require.NoError(t, pool.Shutdown())

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("job context was not canceled on shutdown")
	}
}

func TestNewAppliesDefaultsToInvalidConfig(t *testing.T) {
	pool := New(Config{Size: -1, QueueSize: 0})
	assert.Equal(t, DefaultConfig().Size, pool.config.Size)
	assert.Equal(t, DefaultConfig().QueueSize, pool.config.QueueSize)
	assert.Equal(t, DefaultConfig().ShutdownTimeout, pool.config.ShutdownTimeout)
}

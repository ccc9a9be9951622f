package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	mu      sync.Mutex
	release chan struct{}
	runs    int
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(ctx context.Context) error {
	j.mu.Lock()
	j.runs++
	j.mu.Unlock()
	<-j.release
	return nil
}

func (j *blockingJob) runCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func TestRunnerDropsOverlappingTicks(t *testing.T) {
	r := NewRunner()
	job := &blockingJob{release: make(chan struct{})}
	tick := r.guard(job)

	done := make(chan struct{})
	go func() {
		tick()
		close(done)
	}()

	require.Eventually(t, func() bool { return job.runCount() == 1 }, time.Second, time.Millisecond)

	// A tick while the first run is still active returns without running.
	tick()
	require.Equal(t, 1, job.runCount())

	close(job.release)
	<-done

	// Once the first run drains, the next tick runs again.
	job.release = make(chan struct{})
	close(job.release)
	tick()
	require.Equal(t, 2, job.runCount())
}

func TestRunnerRegisterRejectsBadSpec(t *testing.T) {
	r := NewRunner()
	err := r.Register("not a spec", &blockingJob{release: make(chan struct{})})
	require.Error(t, err)
}

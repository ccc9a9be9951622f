package schedule

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Job is a periodic unit of work. Run must tolerate being invoked again
// after a failed run; the runner never retries within a tick.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner drives registered jobs on five-field cron specs. Each job runs
// serially with itself; a tick that fires while the previous run is still
// active is dropped, not queued.
type Runner struct {
	cron *cron.Cron
	ctx  context.Context
}

func NewRunner() *Runner {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Runner{cron: cron.New(cron.WithParser(parser))}
}

func (r *Runner) Register(spec string, job Job) error {
	if _, err := r.cron.AddFunc(spec, r.guard(job)); err != nil {
		return fmt.Errorf("register job %s: %w", job.Name(), err)
	}
	logutil.GetLogger(context.Background()).Info("job registered",
		zap.String("job", job.Name()), zap.String("spec", spec))
	return nil
}

func (r *Runner) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	r.ctx = ctx
	r.cron.Start()
}

// Stop halts scheduling and waits for in-flight runs to drain.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Runner) guard(job Job) func() {
	var inFlight atomic.Bool
	return func() {
		if !inFlight.CompareAndSwap(false, true) {
			logutil.GetLogger(r.context()).Warn("job tick dropped, previous run still active",
				zap.String("job", job.Name()))
			return
		}
		defer inFlight.Store(false)
		r.runOnce(job)
	}
}

func (r *Runner) runOnce(job Job) {
	ctx := r.context()
	logger := logutil.GetLogger(ctx).With(zap.String("job", job.Name()))
	began := time.Now()
	if err := job.Run(ctx); err != nil {
		logger.Error("job run failed", zap.Duration("cost", time.Since(began)), zap.Error(err))
		return
	}
	logger.Info("job run done", zap.Duration("cost", time.Since(began)))
}

func (r *Runner) context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

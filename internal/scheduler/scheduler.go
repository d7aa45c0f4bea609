package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/t77yq/campus-bot/internal/model"
)

// Handler is the body of a scheduled job. A returned error is logged
// and does not affect the job's next occurrence.
type Handler func(ctx context.Context) error

// cronLogger adapts zap.Logger to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err))
}

// job holds one registered recurring job for the process lifetime.
type job struct {
	id      string
	label   string
	trigger Trigger
	handler Handler
	entryID cron.EntryID

	running int32
	lastRun atomic.Value // time.Time
}

// Scheduler maintains a fixed set of recurring jobs. Each fire runs in
// its own goroutine, so a slow handler cannot delay another job's fire
// time, and a failing or panicking handler cannot take down its own
// next occurrence or any other job.
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron

	mu      sync.Mutex
	jobs    map[string]*job
	order   []string
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler.
func New(logger *zap.Logger) *Scheduler {
	cl := &cronLogger{logger: logger.Named("cron")}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	return &Scheduler{
		logger: logger.Named("scheduler"),
		cron:   c,
		jobs:   make(map[string]*job),
	}
}

// Register adds a recurring job. It fails with ErrDuplicateJob when the
// id is already taken; registering a job is a startup-time operation
// and a duplicate id is a programming error.
func (s *Scheduler) Register(id, label string, trigger Trigger, handler Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, id)
	}

	j := &job{
		id:      id,
		label:   label,
		trigger: trigger,
		handler: handler,
	}

	entryID, err := s.cron.AddFunc(trigger.Spec(), func() { s.runJob(j) })
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidTrigger, trigger.Spec(), err)
	}
	j.entryID = entryID
	s.jobs[id] = j
	s.order = append(s.order, id)

	next, _ := NextOccurrence(trigger, time.Now())
	s.logger.Info("Registered job",
		zap.String("id", id),
		zap.String("label", label),
		zap.String("spec", trigger.Spec()),
		zap.Time("next_run", next))

	return nil
}

// Start begins firing jobs at their computed times. The context is
// passed to every handler invocation.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.cron.Start()

	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop ceases firing new job executions and waits for in-flight
// handlers to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.cancel()

	s.logger.Info("Scheduler stopped")
}

// Status returns a point-in-time view of every job in registration order.
func (s *Scheduler) Status() []model.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]model.JobStatus, 0, len(s.order))
	for _, id := range s.order {
		j := s.jobs[id]

		next := s.cron.Entry(j.entryID).Next
		if !s.started && next.IsZero() {
			next, _ = NextOccurrence(j.trigger, time.Now())
		}

		state := model.JobStateScheduled
		switch {
		case atomic.LoadInt32(&j.running) > 0:
			state = model.JobStateRunning
		case next.IsZero():
			state = model.JobStateExhausted
		}

		var lastRun time.Time
		if v := j.lastRun.Load(); v != nil {
			lastRun = v.(time.Time)
		}

		statuses = append(statuses, model.JobStatus{
			ID:      id,
			Label:   j.label,
			State:   state,
			LastRun: lastRun,
			NextRun: next,
			Active:  !next.IsZero(),
		})
	}

	return statuses
}

// JobStatus returns the status of a single job.
func (s *Scheduler) JobStatus(id string) (model.JobStatus, error) {
	for _, status := range s.Status() {
		if status.ID == id {
			return status, nil
		}
	}
	return model.JobStatus{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// runJob executes one occurrence. Failures are contained here: an error
// is logged and the occurrence is simply over, with no retry and no
// catch-up; the regular schedule continues.
func (s *Scheduler) runJob(j *job) {
	started := time.Now()
	atomic.AddInt32(&j.running, 1)
	defer atomic.AddInt32(&j.running, -1)
	j.lastRun.Store(started)

	s.logger.Info("Job fired",
		zap.String("id", j.id),
		zap.String("label", j.label))

	if err := j.handler(s.ctx); err != nil {
		s.logger.Error("Job failed",
			zap.String("id", j.id),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err))
		return
	}

	s.logger.Info("Job completed",
		zap.String("id", j.id),
		zap.Duration("duration", time.Since(started)))
}

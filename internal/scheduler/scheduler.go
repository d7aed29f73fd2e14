package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard five-field expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

var ErrUnknownJob = errors.New("scheduler: unknown job")

// Job is a named task run on a cron schedule.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context

	mu   sync.Mutex
	jobs map[string]registered
}

type registered struct {
	job Job
	id  cron.EntryID
}

// New builds a scheduler whose jobs receive ctx. Overlapping runs of the
// same job are skipped and panics are recovered.
func New(ctx context.Context) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:  ctx,
		jobs: make(map[string]registered),
	}
}

func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("scheduler: job needs a name and a run func")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", job.Name)
	}

	id, err := s.cron.AddFunc(job.Spec, func() {
		s.execute(job)
	})
	if err != nil {
		return fmt.Errorf("scheduler: job %q: %w", job.Name, err)
	}
	s.jobs[job.Name] = registered{job: job, id: id}
	return nil
}

func (s *Scheduler) execute(job Job) error {
	start := time.Now()
	err := job.Run(s.ctx)
	observeRun(job.Name, err, time.Since(start))
	if err != nil {
		log.Printf("[SCHEDULER] job %s failed after %s: %v", job.Name, time.Since(start), err)
		return err
	}
	log.Printf("[SCHEDULER] job %s finished in %s", job.Name, time.Since(start))
	return nil
}

// RunNow executes a registered job immediately on the caller's goroutine.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	reg, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.execute(reg.job)
}

// Next reports when a job fires next. Zero before Start.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	reg, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(reg.id).Next, true
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextAfter parses spec and returns its first fire time after from.
func NextAfter(spec string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

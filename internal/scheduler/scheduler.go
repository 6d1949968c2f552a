package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one unit of periodic work. Its error is logged, never propagated.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron *cron.Cron

	mu   sync.Mutex
	jobs map[string]Job
}

func New() *Scheduler {
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo))

	// Overlapping runs of the same job are skipped. Recover has to sit inside
	// the skip guard or a panic never releases it.
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger), cron.Recover(logger)),
	)

	return &Scheduler{
		cron: c,
		jobs: make(map[string]Job),
	}
}

// Every schedules job to run at a fixed interval once the scheduler is started.
func (s *Scheduler) Every(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %s is already scheduled", name)
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	return nil
}

func (s *Scheduler) Start() {
	slog.Info("starting scheduler", "jobs", len(s.jobs))
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	slog.Info("stopping scheduler")
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunNow runs a scheduled job synchronously, outside the cron loop.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}
	return job(context.Background())
}

func (s *Scheduler) run(name string, job Job) {
	start := time.Now()
	if err := job(context.Background()); err != nil {
		slog.Error("scheduled job failed", "job", name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
}

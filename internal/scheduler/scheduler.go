package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"fleet-booking-backend/internal/jobs"
	"fleet-booking-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron     *cron.Cron
	jobs     *jobs.JobRunner
	location *time.Location
	entries  map[string]cron.EntryID

	mu      sync.Mutex
	running bool
}

// NewScheduler registers every job of the runner. Schedules use six fields
// (seconds first) and are evaluated in loc, the booking time zone.
func NewScheduler(jobRunner *jobs.JobRunner, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:     c,
		jobs:     jobRunner,
		location: loc,
		entries:  make(map[string]cron.EntryID),
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	for _, job := range s.jobs.Jobs() {
		id, err := s.cron.AddFunc(job.Schedule, job.Run)
		if err != nil {
			logger.Error("Failed to register job", "job", job.Name, "schedule", job.Schedule, "error", err)
			return fmt.Errorf("register job %s: %w", job.Name, err)
		}
		s.entries[job.Name] = id
		logger.Info("Registered job", "job", job.Name, "schedule", job.Schedule)
	}
	logger.Info("All cron jobs registered successfully", "count", len(s.cron.Entries()))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	s.running = true
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	logger.Info("Cron scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRuns returns the next activation after now per job name.
func (s *Scheduler) NextRuns(now time.Time) map[string]time.Time {
	out := make(map[string]time.Time, len(s.entries))
	for name, id := range s.entries {
		if e := s.cron.Entry(id); e.Valid() {
			out[name] = e.Schedule.Next(now.In(s.location))
		}
	}
	return out
}

package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fleet-booking-backend/internal/config"
	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/service"
)

const defaultJobTimeout = 10 * time.Minute

// Job is a named unit of scheduled work.
type Job struct {
	Name     string
	Schedule string
	Run      func()
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   config.SchedulerConfig
	timeout  time.Duration
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Reminders service.ReminderService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg config.SchedulerConfig) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		timeout:  defaultJobTimeout,
	}
}

// Jobs lists every job with its cron schedule, sorted by name.
func (jr *JobRunner) Jobs() []Job {
	jobs := []Job{
		{Name: "send-completion-reminders", Schedule: jr.config.SendCompletionReminders, Run: jr.SendCompletionReminders},
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// RunOnce runs the named job synchronously, or every job for "all".
func (jr *JobRunner) RunOnce(name string) error {
	for _, job := range jr.Jobs() {
		if name == "all" || job.Name == name {
			job.Run()
			if name != "all" {
				return nil
			}
		}
	}
	if name == "all" {
		return nil
	}
	return fmt.Errorf("unknown job %q", name)
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}

// SendCompletionReminders nudges requesters whose accepted bookings have ended.
// Reservations are never completed automatically.
func (jr *JobRunner) SendCompletionReminders() {
	jr.runWithRecovery("SendCompletionReminders", func(ctx context.Context) error {
		sent, err := jr.services.Reminders.SendCompletionReminders(ctx)
		if err != nil {
			return err
		}
		logger.Info("Completion reminders sent", "count", sent)
		return nil
	})
}

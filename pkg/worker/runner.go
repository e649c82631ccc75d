package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/dromero/barberbot/pkg/logger"
)

// JobFunc is a single invocation of a recurring job.
type JobFunc func(ctx context.Context) error

// Schedule computes the next fire time strictly after now.
type Schedule interface {
	Next(now time.Time) time.Time
}

// Every fires at a fixed interval.
type Every time.Duration

func (e Every) Next(now time.Time) time.Time {
	return now.Add(time.Duration(e))
}

// DailyAt fires once per calendar day at a fixed wall-clock time.
type DailyAt struct {
	Hour     int
	Minute   int
	Location *time.Location
}

func (d DailyAt) Next(now time.Time) time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Job is a named recurring task.
type Job struct {
	Name     string
	Schedule Schedule
	Run      JobFunc

	nextAt time.Time
}

// Runner drives a set of recurring jobs on a single goroutine. Jobs never
// overlap: the runner sleeps until the earliest due job, runs it to
// completion, then reschedules it. A panic or error in one invocation never
// cancels future invocations.
type Runner struct {
	jobs   []*Job
	logger *logger.Logger
}

func NewRunner(logger *logger.Logger) *Runner {
	return &Runner{logger: logger}
}

// Add registers a job. Must be called before Start.
func (r *Runner) Add(name string, schedule Schedule, fn JobFunc) {
	r.jobs = append(r.jobs, &Job{Name: name, Schedule: schedule, Run: fn})
}

// Start blocks until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	if len(r.jobs) == 0 {
		r.logger.Warn("runner started with no jobs")
		<-ctx.Done()
		return
	}

	now := time.Now()
	for _, j := range r.jobs {
		j.nextAt = j.Schedule.Next(now)
		r.logger.Info("job scheduled", "job", j.Name, "next_run", j.nextAt.Format(time.RFC3339))
	}

	for {
		next := r.earliest()
		timer := time.NewTimer(time.Until(next.nextAt))

		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("runner shutting down")
			return
		case <-timer.C:
			r.runJob(ctx, next)
			next.nextAt = next.Schedule.Next(time.Now())
		}
	}
}

func (r *Runner) earliest() *Job {
	next := r.jobs[0]
	for _, j := range r.jobs[1:] {
		if j.nextAt.Before(next.nextAt) {
			next = j
		}
	}
	return next
}

func (r *Runner) runJob(ctx context.Context, j *Job) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error(fmt.Errorf("panic: %v", p), "job panicked", "job", j.Name)
		}
	}()

	if err := j.Run(ctx); err != nil {
		r.logger.Error(err, "job failed", "job", j.Name)
	}
}

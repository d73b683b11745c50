// Package jobs runs the recurring background work: data refresh, clinical
// threshold checks, daily cost aggregation, and the weekly report.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adhocore/gronx"
)

// Job is a named unit of recurring work with a cron schedule.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler evaluates job schedules once a minute and runs due jobs.
type Scheduler struct {
	gron *gronx.Gronx
	jobs []Job
}

// NewScheduler validates every job's cron expression.
func NewScheduler(jobs []Job) (*Scheduler, error) {
	g := gronx.New()
	for _, j := range jobs {
		if !g.IsValid(j.Schedule) {
			return nil, fmt.Errorf("job %s: invalid cron expression %q", j.Name, j.Schedule)
		}
	}
	return &Scheduler{gron: g, jobs: jobs}, nil
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []Job {
	return s.jobs
}

// RunDue executes every job whose schedule matches ref. Job failures are
// logged and do not stop the remaining jobs.
func (s *Scheduler) RunDue(ctx context.Context, ref time.Time) {
	for _, j := range s.jobs {
		due, err := s.gron.IsDue(j.Schedule, ref)
		if err != nil {
			log.Printf("job %s: evaluate schedule: %v", j.Name, err)
			continue
		}
		if !due {
			continue
		}
		start := time.Now()
		if err := j.Run(ctx); err != nil {
			log.Printf("job %s failed: %v", j.Name, err)
			continue
		}
		log.Printf("job %s completed in %s", j.Name, time.Since(start).Round(time.Millisecond))
	}
}

// RunByName executes one job immediately, regardless of its schedule.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, j := range s.jobs {
		if j.Name == name {
			return j.Run(ctx)
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

// Start ticks once a minute until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.RunDue(ctx, now)
		}
	}
}

package reactive

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vango-dev/ripple/internal/errors"
)

// Job is a unit of deferred work. Jobs are deduplicated by pointer, so the
// same *Job queued many times before a flush runs once.
type Job struct {
	id   uint64
	Name string
	Run  func()
}

// NewJob creates a job.
func NewJob(name string, fn func()) *Job {
	return &Job{id: nextID(), Name: name, Run: fn}
}

// ID returns the job's unique identifier.
func (j *Job) ID() uint64 {
	return j.id
}

// Scheduler batches jobs into one flush per microtask checkpoint.
//
// It is idle until the first Queue, which posts a flush to the runtime's
// microtask queue. Later Queue calls only append. The flush runs each
// distinct job once in first-enqueue order.
type Scheduler struct {
	rt      *Runtime
	queue   []*Job
	pending bool
}

// Queue adds job to the pending batch.
func (s *Scheduler) Queue(job *Job) {
	s.queue = append(s.queue, job)
	if !s.pending {
		s.pending = true
		s.rt.queueMicrotask(s.flush)
	}
}

// Pending reports whether a flush has been posted and not yet run.
func (s *Scheduler) Pending() bool {
	return s.pending
}

// Len returns the number of queued entries, duplicates included.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// flush runs the deduplicated batch. The scheduler returns to idle before
// any job runs, so jobs queued during the flush start a new batch.
func (s *Scheduler) flush() {
	seen := make(map[*Job]struct{}, len(s.queue))
	jobs := make([]*Job, 0, len(s.queue))
	for _, job := range s.queue {
		if _, dup := seen[job]; dup {
			continue
		}
		seen[job] = struct{}{}
		jobs = append(jobs, job)
	}
	clear(s.queue)
	s.queue = s.queue[:0]
	s.pending = false

	ctx, span := s.rt.tracer.Start(context.Background(), "reactive.flush")
	defer span.End()
	span.SetAttributes(attribute.Int("ripple.jobs", len(jobs)))

	failed := 0
	for _, job := range jobs {
		if err := s.runJob(ctx, job); err != nil {
			failed++
			span.RecordError(err)
		}
	}
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d jobs panicked", failed))
	}
	s.rt.metrics.FlushDone(len(jobs))
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrJobPanic).WithDetail(fmt.Sprint(r))
			s.rt.logger.ErrorContext(ctx, "job panicked",
				"job", job.Name,
				"job_id", job.id,
				"error", err,
			)
			s.rt.metrics.JobPanicked()
		}
	}()
	job.Run()
	return nil
}

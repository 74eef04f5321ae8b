package cron

import (
	"context"
	"errors"
	"fmt"
)

// Job is one task run on every cron cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

var ErrDuplicateJob = errors.New("cron job already registered")

// Registry keeps jobs by name and runs them in registration order.
type Registry struct {
	order  []string
	byName map[string]Job
}

// NewRegistry skips nil jobs and any job whose name is already taken.
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{byName: map[string]Job{}}
	for _, job := range jobs {
		_ = r.Register(job)
	}
	return r
}

func (r *Registry) Register(job Job) error {
	if job == nil {
		return errors.New("nil cron job")
	}
	name := job.Name()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	r.byName[name] = job
	r.order = append(r.order, name)
	return nil
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, 0, len(r.order))
	for _, name := range r.order {
		jobs = append(jobs, r.byName[name])
	}
	return jobs
}

// Only narrows the registry to the named jobs, for manual single-job runs.
func (r *Registry) Only(names ...string) (*Registry, error) {
	out := NewRegistry()
	for _, name := range names {
		job, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown cron job %q", name)
		}
		if err := out.Register(job); err != nil {
			return nil, err
		}
	}
	return out, nil
}

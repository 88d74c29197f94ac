package cron

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeLock struct {
	mu       sync.Mutex
	allow    bool
	acquired int
	released int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquired++
	return f.allow, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return nil
}

type countingJob struct {
	mu   sync.Mutex
	runs int
}

func (c *countingJob) Name() string { return "counting" }

func (c *countingJob) Run(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs++
	return nil
}

func (c *countingJob) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

func TestServiceRunsJobsWhenLockHeld(t *testing.T) {
	job := &countingJob{}
	lock := &fakeLock{allow: true}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Interval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()
	_ = svc.Run(ctx)

	if job.count() < 2 {
		t.Fatalf("expected at least 2 runs, got %d", job.count())
	}
	if lock.released != lock.acquired {
		t.Fatalf("expected every acquire to be released: %d vs %d", lock.acquired, lock.released)
	}
}

func TestServiceSkipsCycleWhenLockBusy(t *testing.T) {
	job := &countingJob{}
	lock := &fakeLock{allow: false}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Interval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	_ = svc.Run(ctx)

	if job.count() != 0 {
		t.Fatalf("expected no runs, got %d", job.count())
	}
}

func TestRegistrySkipsNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &countingJob{})
	registry.Register(nil)
	if len(registry.Jobs()) != 1 {
		t.Fatalf("expected 1 job, got %d", len(registry.Jobs()))
	}
}

func TestRegistryDeduplicatesByName(t *testing.T) {
	registry := NewRegistry(&countingJob{}, &countingJob{})
	registry.Register(&countingJob{})
	if len(registry.Jobs()) != 1 {
		t.Fatalf("expected 1 job, got %d", len(registry.Jobs()))
	}
}

package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned by Do after Close
var ErrPoolClosed = errors.New("worker pool closed")

// WorkerPool bounds how many images are decoded and rendered at once
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	once     sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func()),
	}
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Start initializes and starts all workers in the pool
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

// worker processes jobs from the job queue
func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		job()
	}
}

// Do runs job on a free worker and returns its error. It gives up with
// ctx.Err() while still queued; once a worker has picked the job up, Do
// waits for it to finish so no writes outlive the call.
func (wp *WorkerPool) Do(ctx context.Context, job func(ctx context.Context) error) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrPoolClosed
	}

	done := make(chan error, 1)
	select {
	case wp.jobQueue <- func() { done <- job(ctx) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-done
}

// Close shuts down the worker pool once in-flight calls to Do have returned
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if !wp.closed {
		wp.closed = true
		close(wp.jobQueue)
	}
}

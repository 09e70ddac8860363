package notification

import (
	"context"
	"log"
	"sync"
	"time"

	"hotel-reservation-backend/internal/events"
)

// WorkerPool delivers reservation events to every publisher in the background.
type WorkerPool struct {
	size       int
	jobs       chan events.Event
	publishers []events.Publisher
	timeout    time.Duration
	wg         sync.WaitGroup
}

// NewWorkerPool creates a new worker pool with a job queue of the given depth.
func NewWorkerPool(size, queue int, timeout time.Duration, publishers ...events.Publisher) *WorkerPool {
	if size < 1 {
		size = 1
	}
	if queue < size {
		queue = size
	}
	return &WorkerPool{
		size:       size,
		jobs:       make(chan events.Event, queue),
		publishers: publishers,
		timeout:    timeout,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Printf("Worker %d started", id)
	for {
		select {
		case e := <-wp.jobs:
			wp.deliver(ctx, e)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an event. It never blocks the caller: when the queue is
// full the event is dropped and logged.
func (wp *WorkerPool) Dispatch(e events.Event) {
	select {
	case wp.jobs <- e:
	default:
		log.Printf("Event queue full, dropping %s for reservation %d", e.Type, e.ReservationID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan events.Event {
	return wp.jobs
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// deliver hands e to each publisher. A failing publisher is logged and does
// not stop delivery to the others.
func (wp *WorkerPool) deliver(ctx context.Context, e events.Event) {
	for _, p := range wp.publishers {
		pctx := ctx
		var cancel context.CancelFunc = func() {}
		if wp.timeout > 0 {
			pctx, cancel = context.WithTimeout(ctx, wp.timeout)
		}
		if err := p.Publish(pctx, e); err != nil {
			log.Printf("Error publishing %s for reservation %d: %v", e.Type, e.ReservationID, err)
		}
		cancel()
	}
}

// Close closes every publisher.
func (wp *WorkerPool) Close() {
	for _, p := range wp.publishers {
		if err := p.Close(); err != nil {
			log.Printf("Error closing publisher: %v", err)
		}
	}
}

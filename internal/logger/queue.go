// internal/logger/queue.go

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// fallbackOutput receives write failures and recovered panics from sink
// workers. Reporting them through the owning Logger could loop back into the
// failing sink, so they bypass it.
var fallbackOutput io.Writer = os.Stderr

// writeQueue is an unbounded FIFO of jobs consumed by a single goroutine.
// Every job for one sink runs on that goroutine, so the sink needs no
// locking of its own and lines are never interleaved. Enqueueing never
// blocks the caller.
type writeQueue struct {
	name string

	mu      sync.Mutex
	pending []func() error
	closed  bool

	wake chan struct{}
	done chan struct{}

	// limits how often failures are reported for this sink
	errLimiter *rate.Limiter
}

func newWriteQueue(name string) *writeQueue {
	q := &writeQueue{
		name:       name,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		errLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	go q.run()
	return q
}

// enqueue schedules job and returns immediately. It reports false when the
// queue has been closed; the job is then dropped.
func (q *writeQueue) enqueue(job func() error) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, job)
	// wake is closed under mu, so signal while still holding it
	select {
	case q.wake <- struct{}{}:
	default:
	}
	q.mu.Unlock()
	return true
}

// flush blocks until every job enqueued before the call has run.
func (q *writeQueue) flush() {
	flushed := make(chan struct{})
	if !q.enqueue(func() error {
		close(flushed)
		return nil
	}) {
		<-q.done
		return
	}
	select {
	case <-flushed:
	case <-q.done:
	}
}

// close stops accepting jobs, waits for the pending ones to run and stops
// the worker. It is safe to call more than once.
func (q *writeQueue) close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.wake)
	}
	q.mu.Unlock()
	<-q.done
}

func (q *writeQueue) run() {
	defer close(q.done)
	for {
		_, ok := <-q.wake
		for {
			q.mu.Lock()
			batch := q.pending
			q.pending = nil
			q.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, job := range batch {
				q.runJob(job)
			}
		}
		if !ok {
			return
		}
	}
}

func (q *writeQueue) runJob(job func() error) {
	defer func() {
		if r := recover(); r != nil {
			q.report(fmt.Errorf("panic in sink: %v", r))
		}
	}()
	if err := job(); err != nil {
		q.report(err)
	}
}

func (q *writeQueue) report(err error) {
	if !q.errLimiter.Allow() {
		return
	}
	_, _ = fmt.Fprintf(fallbackOutput, "[fanlog] destination '%s': %v\n", q.name, err)
}

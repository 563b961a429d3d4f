package reconcile

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultDebounce = 20 * time.Millisecond
	DefaultMaxWait  = 120 * time.Millisecond
)

// Job is one unit of queued work. Jobs run one at a time on the queue's
// goroutine in the order they were enqueued.
type Job func(ctx context.Context)

// UpdateQueue coalesces bursts of jobs. A job waits until no new job arrived
// for the debounce interval, but never longer than maxWait after the first
// pending job. Pending jobs drain together, FIFO.
type UpdateQueue struct {
	debounce time.Duration
	maxWait  time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu           sync.Mutex
	jobs         []Job
	pendingSince time.Time
	urgent       bool

	signal chan struct{}
}

func NewUpdateQueue(debounce, maxWait time.Duration, logger *zap.Logger) *UpdateQueue {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if maxWait < debounce {
		maxWait = debounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateQueue{
		debounce: debounce,
		maxWait:  maxWait,
		logger:   logger,
		now:      time.Now,
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue schedules job after the debounce interval.
func (q *UpdateQueue) Enqueue(job Job) { q.push(job, false) }

// EnqueueUrgent schedules job and drains the queue without waiting.
func (q *UpdateQueue) EnqueueUrgent(job Job) { q.push(job, true) }

// Flush drains whatever is pending without waiting for the debounce.
func (q *UpdateQueue) Flush() {
	q.mu.Lock()
	q.urgent = true
	q.mu.Unlock()
	q.notify()
}

// Pending returns the number of jobs waiting to run.
func (q *UpdateQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *UpdateQueue) push(job Job, urgent bool) {
	q.mu.Lock()
	if len(q.jobs) == 0 {
		q.pendingSince = q.now()
	}
	q.jobs = append(q.jobs, job)
	q.urgent = q.urgent || urgent
	q.mu.Unlock()
	q.notify()
}

func (q *UpdateQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// delay returns how long the loop should wait before draining, and whether
// there is anything to drain at all.
func (q *UpdateQueue) delay() (time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		q.urgent = false
		return 0, false
	}
	if q.urgent {
		return 0, true
	}
	left := q.maxWait - q.now().Sub(q.pendingSince)
	return max(min(q.debounce, left), 0), true
}

// Run consumes the queue until ctx is done. It must be called once.
func (q *UpdateQueue) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.signal:
			d, ok := q.delay()
			if !ok {
				continue
			}
			if d == 0 {
				timer.Stop()
				q.drain(ctx)
				continue
			}
			timer.Reset(d)
		case <-timer.C:
			q.drain(ctx)
		}
	}
}

func (q *UpdateQueue) drain(ctx context.Context) {
	q.mu.Lock()
	jobs := q.jobs
	q.jobs = nil
	q.urgent = false
	q.mu.Unlock()

	if len(jobs) > 1 {
		q.logger.Debug("draining coalesced jobs", zap.Int("jobs", len(jobs)))
	}
	for _, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	}
}

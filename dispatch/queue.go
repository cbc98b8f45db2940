package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrQueueClosed is returned when work is submitted to a closed queue.
var ErrQueueClosed = errors.New("dispatch queue closed")

// Queue is a single-threaded task queue. Tasks run one at a time, to
// completion, in the order they were posted. Post may be called from any
// goroutine; tasks only ever run on the goroutine calling Run or Drain.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	closed bool
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
	}
}

// Post appends a task. It returns false if the queue is closed.
func (q *Queue) Post(task func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Call posts fn and waits until it has run on the queue goroutine.
// It must not be called from a task, or it will wait forever.
func (q *Queue) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !q.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrQueueClosed
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain runs pending tasks, including tasks posted while draining, until the
// queue is empty. It returns the number of tasks run.
func (q *Queue) Drain() int {
	n := 0
	for {
		task, ok := q.pop()
		if !ok {
			return n
		}
		q.runTask(task)
		n++
	}
}

// Run processes tasks until ctx is cancelled, then closes the queue.
func (q *Queue) Run(ctx context.Context) error {
	log.Debug("Dispatch queue started")
	defer log.Debug("Dispatch queue stopped")

	for {
		q.Drain()
		select {
		case <-ctx.Done():
			q.Close()
			return ctx.Err()
		case <-q.wake:
		}
	}
}

// Pending returns the number of queued tasks
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Close rejects further posts and discards pending tasks.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if len(q.tasks) > 0 {
		log.Debugf("Discarding %d pending tasks on close", len(q.tasks))
	}
	q.closed = true
	q.tasks = nil
}

func (q *Queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return task, true
}

// runTask recovers a panicking task so the loop keeps running.
func (q *Queue) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Dispatch task panicked", "panic", r)
		}
	}()
	task()
}

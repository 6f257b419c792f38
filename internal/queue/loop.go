// Package queue runs deferred work on a single goroutine so that side effects
// scheduled by the ledger services execute one at a time, in order.
package queue

import (
	"sync"
	"sync/atomic"
	"time"

	"budgie/internal/logger"
)

// Loop executes posted functions serially on one goroutine.
type Loop struct {
	tasks   chan func()
	done    chan struct{}
	stopped chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a loop with the given queue capacity. Call Start before posting.
func New(capacity int) *Loop {
	if capacity <= 0 {
		capacity = 64
	}
	return &Loop{
		tasks:   make(chan func(), capacity),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start launches the worker goroutine. Subsequent calls are no-ops.
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

// Stop ends the loop. Tasks still queued are dropped. Stop waits for the task
// currently executing, if any, to return.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
	l.startOnce.Do(func() { close(l.stopped) })
	<-l.stopped
}

// Post enqueues fn. It reports false when the loop has been stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// After schedules fn to be posted once d has elapsed. A non-positive delay
// posts immediately. The returned Task can cancel fn until it starts running.
func (l *Loop) After(d time.Duration, fn func()) *Task {
	task := &Task{}
	run := func() {
		if !task.state.CompareAndSwap(taskPending, taskRunning) {
			return
		}
		fn()
		task.state.Store(taskDone)
	}

	if d <= 0 {
		if !l.Post(run) {
			task.state.Store(taskCancelled)
		}
		return task
	}

	task.mu.Lock()
	task.timer = time.AfterFunc(d, func() {
		if !l.Post(run) {
			task.state.CompareAndSwap(taskPending, taskCancelled)
		}
	})
	task.mu.Unlock()
	return task
}

// Flush blocks until every function posted before the call has run, or the
// loop stops.
func (l *Loop) Flush() {
	ch := make(chan struct{})
	if !l.Post(func() { close(ch) }) {
		return
	}
	select {
	case <-ch:
	case <-l.done:
	}
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		select {
		case <-l.done:
			return
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Named("queue").Errorw("deferred task panicked", "panic", r)
		}
	}()
	fn()
}

const (
	taskPending int32 = iota
	taskRunning
	taskDone
	taskCancelled
)

// Task is a handle to work scheduled with Loop.After.
type Task struct {
	state atomic.Int32
	mu    sync.Mutex
	timer *time.Timer
}

// Cancel prevents the task from running. It reports whether the task was
// still pending; a task that already started or finished is unaffected.
func (t *Task) Cancel() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()
	return t.state.CompareAndSwap(taskPending, taskCancelled)
}

// Done reports whether the task ran to completion.
func (t *Task) Done() bool {
	return t != nil && t.state.Load() == taskDone
}

// Cancelled reports whether the task was cancelled or dropped.
func (t *Task) Cancelled() bool {
	return t != nil && t.state.Load() == taskCancelled
}

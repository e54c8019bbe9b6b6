package dispatch

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// Scheduler runs deferred deliveries "soon", in submission order.
type Scheduler interface {
	Schedule(task func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(task func())

// Schedule calls f(task).
func (f SchedulerFunc) Schedule(task func()) { f(task) }

// Queue is a cooperative task queue. Tasks accumulate until Flush runs them
// on the caller's goroutine. It models the host task queue of a
// single-threaded runtime and makes deferred delivery deterministic in tests.
type Queue struct {
	mu    sync.Mutex
	tasks []func()
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Schedule appends task to the queue.
func (q *Queue) Schedule(task func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Flush runs pending tasks in FIFO order, including tasks scheduled while
// flushing, and returns how many ran.
func (q *Queue) Flush() int {
	ran := 0
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return ran
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
		ran++
	}
}

// Worker runs scheduled tasks one at a time on a dedicated goroutine, in
// submission order. A panicking task is logged and does not stop the worker.
type Worker struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	busy   bool
	closed bool
	done   chan struct{}
	gid    atomic.Int64
	logger *slog.Logger
}

// NewWorker starts a worker goroutine. A nil logger discards task panics
// after recovering them.
func NewWorker(logger *slog.Logger) *Worker {
	w := &Worker{
		done:   make(chan struct{}),
		logger: logger,
	}
	w.cond = sync.NewCond(&w.mu)
	w.gid.Store(-1)
	go w.run()
	return w
}

// Schedule enqueues task. After Close, tasks run synchronously on the
// caller's goroutine so that no delivery is lost.
func (w *Worker) Schedule(task func()) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.runTask(task)
		return
	}
	w.tasks = append(w.tasks, task)
	w.cond.Broadcast()
	w.mu.Unlock()
}

// Wait blocks until every task scheduled so far has run. Called from a task
// it returns immediately.
func (w *Worker) Wait() {
	if w.inWorker() {
		return
	}
	w.mu.Lock()
	for len(w.tasks) > 0 || w.busy {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

// Close stops accepting new tasks, lets the pending ones finish and waits
// for the worker goroutine to exit. Close is idempotent; called from a task
// it does not wait for the worker to exit.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		w.cond.Broadcast()
	}
	w.mu.Unlock()

	if w.inWorker() {
		return
	}
	<-w.done
}

func (w *Worker) inWorker() bool {
	return w.gid.Load() == goid.Get()
}

func (w *Worker) run() {
	w.gid.Store(goid.Get())
	defer close(w.done)

	for {
		w.mu.Lock()
		for len(w.tasks) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.tasks) == 0 {
			w.mu.Unlock()
			return
		}
		task := w.tasks[0]
		w.tasks[0] = nil
		w.tasks = w.tasks[1:]
		w.busy = true
		w.mu.Unlock()

		w.runTask(task)

		w.mu.Lock()
		w.busy = false
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}

func (w *Worker) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil && w.logger != nil {
			w.logger.Error("deferred delivery panicked",
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	task()
}

var (
	defaultWorker     *Worker
	defaultWorkerOnce sync.Once
)

// DefaultScheduler returns the process-wide Worker used by registries that
// were not given a Scheduler.
func DefaultScheduler() *Worker {
	defaultWorkerOnce.Do(func() {
		defaultWorker = NewWorker(slog.Default())
	})
	return defaultWorker
}

// FILE: lixenwraith/sinklog/timer.go
package sinklog

import (
	"sync"
	"time"
)

// taskKind labels background work for diagnostics
type taskKind int

const (
	taskCompress taskKind = iota
	taskRetention
)

func (k taskKind) String() string {
	if k == taskCompress {
		return "compress"
	}
	return "retention"
}

// task is one unit of background work
type task struct {
	kind taskKind
	path string // archive to compress, unused for retention
}

// worker runs file sink maintenance off the write path.
// Tasks execute in submission order on a single goroutine, and an optional ticker drives periodic work.
type worker struct {
	run    func(task)
	onTick func()

	mu      sync.Mutex
	queue   []task
	busy    bool
	closing bool
	quiet   bool          // idle is closed
	idle    chan struct{} // closed while no task is queued or running

	wake chan struct{}
	done chan struct{}
}

// newWorker starts the worker goroutine. A tick of zero disables periodic work.
func newWorker(run func(task), tick time.Duration, onTick func()) *worker {
	w := &worker{
		run:    run,
		onTick: onTick,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	w.idle = make(chan struct{})
	close(w.idle)
	w.quiet = true
	go w.loop(tick)
	return w
}

// submit enqueues a task, returning false once the worker is closing
func (w *worker) submit(t task) bool {
	w.mu.Lock()
	if w.closing {
		w.mu.Unlock()
		return false
	}
	w.queue = append(w.queue, t)
	if w.quiet {
		w.idle = make(chan struct{})
		w.quiet = false
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

// pending reports queued plus running tasks
func (w *worker) pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := len(w.queue)
	if w.busy {
		n++
	}
	return n
}

func (w *worker) loop(tick time.Duration) {
	defer close(w.done)

	var tickC <-chan time.Time
	if tick > 0 && w.onTick != nil {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		w.mu.Lock()
		if len(w.queue) > 0 {
			t := w.queue[0]
			w.queue[0] = task{}
			w.queue = w.queue[1:]
			w.busy = true
			w.mu.Unlock()

			w.run(t)

			w.mu.Lock()
			w.busy = false
			if len(w.queue) == 0 {
				close(w.idle)
				w.quiet = true
			}
			w.mu.Unlock()
			continue
		}
		if w.closing {
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()

		select {
		case <-w.wake:
		case <-tickC:
			w.onTick()
		}
	}
}

// waitIdle blocks until the queue is empty and no task runs, or the timeout passes
func (w *worker) waitIdle(timeout time.Duration) bool {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-idle:
		return true
	case <-timer.C:
		return false
	}
}

// drain stops intake, runs what remains and waits up to timeout for the goroutine to exit.
// It reports the number of tasks abandoned.
func (w *worker) drain(timeout time.Duration) int {
	w.mu.Lock()
	w.closing = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-w.done:
		return 0
	case <-timer.C:
		return w.pending()
	}
}

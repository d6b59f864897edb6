package workerpool

import (
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/embedphp/embedphp/httpvalue"
	"github.com/embedphp/embedphp/phpengine"
)

// workerState mirrors the lifecycle a pinned interpreter thread moves
// through: idle between jobs, busy while dispatching, stopped once
// retired by the pool.
type workerState int32

const (
	stateIdle workerState = iota
	stateBusy
	stateStopped
)

// worker owns one phpengine.Handler bound to a single, locked OS thread.
// Pinning the thread matters because the interpreter's server-context
// slot is keyed by OS thread id (see phpengine's slot_cgo.go) — letting
// the goroutine float across threads would let one job's context bleed
// into another's.
type worker struct {
	id      int
	handler *phpengine.Handler

	state       atomic.Int32
	jobs        atomic.Int64
	maxJobs     int
	maxRSSBytes int64

	startedAt time.Time
	lastJobAt time.Time

	jobsCh chan job
	done   chan struct{}
}

type job struct {
	req    *httpvalue.Request
	result chan<- jobResult
}

type jobResult struct {
	resp    *httpvalue.Response
	err     error
	recycle bool
}

func newWorker(id int, docroot string, maxJobs int, maxRSSBytes int64, opts []phpengine.Option) (*worker, error) {
	h, err := phpengine.New(docroot, opts...)
	if err != nil {
		return nil, err
	}
	w := &worker{
		id:          id,
		handler:     h,
		maxJobs:     maxJobs,
		maxRSSBytes: maxRSSBytes,
		jobsCh:      make(chan job),
		done:        make(chan struct{}),
	}
	w.state.Store(int32(stateIdle))
	return w, nil
}

// run is the worker's goroutine body. It locks the calling goroutine to
// its OS thread for the worker's entire lifetime, matching the one
// interpreter-thread-per-worker model the handler's slot assumes.
func (w *worker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	w.startedAt = time.Now()

	for j := range w.jobsCh {
		w.state.Store(int32(stateBusy))
		resp, err := w.handler.Handle(j.req)
		w.jobs.Add(1)
		w.lastJobAt = time.Now()
		w.state.Store(int32(stateIdle))
		// needsRecycle reads this thread's own RUSAGE_THREAD counters, so
		// it must run here, still on the worker's locked OS thread, rather
		// than back on the caller's goroutine in Pool.Exec.
		j.result <- jobResult{resp: resp, err: err, recycle: w.needsRecycle()}
	}
}

func (w *worker) stop() {
	close(w.jobsCh)
	<-w.done
	w.state.Store(int32(stateStopped))
	w.handler.Close()
}

// needsRecycle must be called from the worker's own locked goroutine (see
// run): it is true once the job count or this OS thread's peak RSS
// crosses the configured limit.
func (w *worker) needsRecycle() bool {
	if w.maxJobs > 0 && w.jobs.Load() >= int64(w.maxJobs) {
		return true
	}
	if w.maxRSSBytes > 0 {
		if rss, err := threadMaxRSS(); err == nil && rss >= w.maxRSSBytes {
			return true
		}
	}
	return false
}

// threadMaxRSS reports the calling OS thread's peak resident set size in
// bytes, read via getrusage(RUSAGE_THREAD). It is only meaningful when
// called from the worker's own locked goroutine.
func threadMaxRSS() (int64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return 0, err
	}
	// ru.Maxrss is reported in kilobytes on Linux.
	return ru.Maxrss * 1024, nil
}

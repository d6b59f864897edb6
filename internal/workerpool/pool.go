// Package workerpool fans requests out across a set of
// interpreter threads, one phpengine.Handler per worker. It is the
// concurrency shell a host builds around the handler core; the core
// itself has no opinion on pooling.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/embedphp/embedphp/httpvalue"
	"github.com/embedphp/embedphp/internal/config"
	"github.com/embedphp/embedphp/phpengine"
)

// ErrPoolClosed is returned by Exec once Stop has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Stats reports a snapshot of pool occupancy.
type Stats struct {
	TotalWorkers  int
	BusyWorkers   int
	IdleWorkers   int
	TotalRequests int64
}

// Pool dispatches requests to a set of worker goroutines, each pinned to
// its own OS thread and holding its own phpengine.Handler.
type Pool struct {
	cfg     config.PoolConfig
	docroot string
	opts    []phpengine.Option
	logger  *slog.Logger

	mu      sync.RWMutex
	workers []*worker
	nextID  atomic.Int32

	available chan *worker

	ctx    context.Context
	cancel context.CancelFunc

	totalRequests atomic.Int64
	busyWorkers   atomic.Int32
}

// New creates a pool that will build each worker's Handler against
// docroot with the given options.
func New(cfg config.PoolConfig, docroot string, logger *slog.Logger, opts ...phpengine.Option) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		cfg:       cfg,
		docroot:   docroot,
		opts:      opts,
		logger:    logger,
		available: make(chan *worker, cfg.MaxWorkers),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start spawns the configured minimum number of workers and begins the
// idle-scaling watchdog.
func (p *Pool) Start() error {
	p.logger.Info("starting php workerpool",
		"min_workers", p.cfg.MinWorkers,
		"max_workers", p.cfg.MaxWorkers,
	)

	for i := 0; i < p.cfg.MinWorkers; i++ {
		w, err := p.spawn()
		if err != nil {
			return fmt.Errorf("spawning initial worker %d: %w", i, err)
		}
		go w.run()
		p.available <- w
	}

	go p.watchdog()
	return nil
}

// Exec dispatches req to the next available worker, blocking until one
// is free or ctx is done. The request's own deadline, if any, is the
// caller's concern — Exec adds no timeout of its own.
func (p *Pool) Exec(ctx context.Context, req *httpvalue.Request) (*httpvalue.Response, error) {
	p.totalRequests.Add(1)

	var w *worker
	select {
	case w = <-p.available:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, ErrPoolClosed
	}

	p.busyWorkers.Add(1)
	defer p.busyWorkers.Add(-1)

	result := make(chan jobResult, 1)
	w.jobsCh <- job{req: req, result: result}
	res := <-result

	if res.recycle {
		go p.replace(w)
	} else {
		p.available <- w
	}

	return res.resp, res.err
}

// Stop drains and stops every worker.
func (p *Pool) Stop() {
	p.logger.Info("stopping php workerpool")
	p.cancel()

	p.mu.RLock()
	workers := make([]*worker, len(p.workers))
	copy(workers, p.workers)
	p.mu.RUnlock()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			w.stop()
		}(w)
	}
	wg.Wait()
}

// Stats returns a snapshot of current pool occupancy.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	total := len(p.workers)
	p.mu.RUnlock()
	busy := int(p.busyWorkers.Load())

	return Stats{
		TotalWorkers:  total,
		BusyWorkers:   busy,
		IdleWorkers:   total - busy,
		TotalRequests: p.totalRequests.Load(),
	}
}

func (p *Pool) spawn() (*worker, error) {
	id := int(p.nextID.Add(1))

	w, err := newWorker(id, p.docroot, p.cfg.MaxJobs, p.cfg.MaxRSSBytes, p.opts)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.workers = append(p.workers, w)
	p.mu.Unlock()

	return w, nil
}

func (p *Pool) replace(old *worker) {
	old.stop()
	p.remove(old)

	if p.ctx.Err() != nil {
		return
	}

	w, err := p.spawn()
	if err != nil {
		p.logger.Error("failed to spawn replacement worker", "error", err)
		return
	}
	go w.run()
	p.available <- w
}

func (p *Pool) remove(w *worker) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, existing := range p.workers {
		if existing.id == w.id {
			p.workers = append(p.workers[:i], p.workers[i+1:]...)
			break
		}
	}
}

func (p *Pool) watchdog() {
	interval := p.cfg.IdleTimeout.Duration()
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.scaleDown()
		case <-p.ctx.Done():
			return
		}
	}
}

// scaleDown retires one idle worker above the configured minimum when no
// worker is busy at the moment of the tick, mirroring the teacher's
// autoscale watchdog but only in the shrink direction. The pool does not
// grow past MinWorkers: Start spawns that many, and replace swaps a
// recycled worker for exactly one new one.
func (p *Pool) scaleDown() {
	stats := p.Stats()
	if stats.TotalWorkers <= p.cfg.MinWorkers {
		return
	}
	if stats.BusyWorkers > 0 {
		return
	}

	select {
	case w := <-p.available:
		go func() {
			w.stop()
			p.remove(w)
		}()
	default:
	}
}

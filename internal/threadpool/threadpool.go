// Package threadpool implements a fixed-size worker pool backed by a
// single multi-producer/single-consumer queue: any number of
// goroutines may Submit concurrently, but exactly one dispatcher
// goroutine drains the queue (the MPSC contract requires a single
// consumer) and fans tasks out to the worker goroutines.
package threadpool

import (
	"context"
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clib/internal/ring"
)

// Pool runs a fixed number of worker goroutines fed by a single
// dispatcher draining a shared MPSC queue. Submit/TrySubmit are safe
// to call from any number of goroutines.
type Pool struct {
	tasks   *ring.MPSC[func()]
	run     chan func()
	workers int
	wg      sync.WaitGroup

	shuttingDown chan struct{}
	shutdownOnce sync.Once

	completed prometheus.Counter
	rejected  prometheus.Counter
}

// New builds a Pool with the given worker count (0 defaults to
// runtime.NumCPU, matching the teacher's render worker pool) and
// queue capacity.
func New(workers, queueCapacity int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	tasks, err := ring.NewMPSC[func()](queueCapacity)
	if err != nil {
		panic(err)
	}

	p := &Pool{
		tasks:        tasks,
		run:          make(chan func()),
		workers:      workers,
		shuttingDown: make(chan struct{}),
		completed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clib_threadpool_tasks_completed_total",
			Help: "Tasks the thread pool has finished running.",
		}),
		rejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clib_threadpool_tasks_rejected_total",
			Help: "Tasks dropped by TrySubmit because the queue was full.",
		}),
	}

	p.wg.Add(workers + 1)
	go p.dispatch()
	for i := 0; i < workers; i++ {
		go p.runWorker()
	}
	return p
}

// dispatch is the MPSC's sole consumer: it pops tasks and hands them
// to whichever worker goroutine is free next.
func (p *Pool) dispatch() {
	defer p.wg.Done()
	defer close(p.run)
	for {
		task, ok := p.tasks.TryPop()
		if !ok {
			select {
			case <-p.shuttingDown:
				return
			default:
			}
			runtime.Gosched()
			continue
		}
		p.run <- task
	}
}

func (p *Pool) runWorker() {
	defer p.wg.Done()
	for task := range p.run {
		task()
		p.completed.Inc()
	}
}

// Submit enqueues task, spin-waiting if the queue is momentarily full.
// Submit after Shutdown has been called panics: it is a programming
// error to keep feeding a pool that is draining down.
func (p *Pool) Submit(task func()) {
	select {
	case <-p.shuttingDown:
		panic("threadpool: Submit called after Shutdown")
	default:
	}
	p.tasks.Push(task)
}

// TrySubmit enqueues task without blocking, reporting false (and
// counting a rejection) if the queue is full. Once Shutdown has been
// called it reports false without enqueueing or counting.
func (p *Pool) TrySubmit(task func()) bool {
	select {
	case <-p.shuttingDown:
		return false
	default:
	}
	if !p.tasks.TryPush(task) {
		p.rejected.Inc()
		return false
	}
	return true
}

// Shutdown stops accepting new submissions at once, lets the
// dispatcher drain the tasks already queued, then waits for workers
// to finish them, or for ctx to expire first.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() { close(p.shuttingDown) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

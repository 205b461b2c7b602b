package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	"github.com/assemble-build/assemble/engine/core"
	"github.com/assemble-build/assemble/pkg/apperr"
	"github.com/assemble-build/assemble/pkg/logger"
)

// WorkHandle is returned by Submit and resolves once the submitted token has
// run to completion, carrying the token's error (nil on success). If the
// worker that picked up the token panicked mid-run, Wait returns a
// WorkerPanic error instead of blocking forever.
type WorkHandle struct {
	done chan struct{}
	err  error
}

// Wait blocks until the token's work completes (or its worker panics) and
// returns the resulting error.
func (h *WorkHandle) Wait() error {
	<-h.done
	return h.err
}

func newWorkHandle() *WorkHandle {
	return &WorkHandle{done: make(chan struct{})}
}

func (h *WorkHandle) resolve(err error) {
	h.err = err
	close(h.done)
}

// Option configures a Pool at construction.
type Option func(*Pool)

// WithWorkerCount overrides the pool's worker slot count (default:
// runtime.NumCPU(), minimum 1).
func WithWorkerCount(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workerCount = n
		}
	}
}

// WithMeter wires a real metric.Meter into the pool so
// assemble_tasks_total/assemble_worker_busy are recorded; the default is a
// no-op meter, so metrics are off unless a caller opts in.
func WithMeter(meter metric.Meter) Option {
	return func(p *Pool) { p.meter = meter }
}

// Pool is a fixed-size worker pool that runs submitted WorkTokens
// concurrently, bounded by a golang.org/x/sync/semaphore.Weighted sized to
// the worker count. Each worker reports a live Status and panic recovery at
// the worker boundary means one task's panic can never crash the pool or
// strand the other workers — it only fails that task's WorkHandle and marks
// that token's worker slot Panicked; slots are never reused, so the status
// stays.
type Pool struct {
	workerCount int
	sem         *semaphore.Weighted
	meter       metric.Meter
	metrics     *Metrics

	mu        sync.Mutex
	wg        sync.WaitGroup
	statuses  map[int]Status
	nextSlot  int
	anyPanic  bool
	runID     string
}

// NewPool builds a Pool. A nil/unset worker count defaults to
// runtime.NumCPU() (minimum 1, so single-core environments still make
// forward progress).
func NewPool(opts ...Option) (*Pool, error) {
	p := &Pool{
		workerCount: runtime.NumCPU(),
		statuses:    make(map[int]Status),
		runID:       core.MustNewID().String(),
	}
	if p.workerCount < 1 {
		p.workerCount = 1
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sem = semaphore.NewWeighted(int64(p.workerCount))

	meter := p.meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter("assemble/worker")
	}
	metrics, err := newMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize worker pool metrics: %w", err)
	}
	p.metrics = metrics
	return p, nil
}

// Submit blocks until a worker slot is free, then runs token on a new
// goroutine bound to that slot and returns immediately with a WorkHandle.
// ctx governs both the semaphore acquire and the token's own run; a
// canceled ctx unblocks Submit with ctx.Err() without consuming a slot.
func (p *Pool) Submit(ctx context.Context, token WorkToken) (*WorkHandle, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	handle := newWorkHandle()
	slot := p.claimSlot()
	p.setStatus(slot, Running(token.ID))
	p.metrics.workerStarted(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		defer p.metrics.workerFinished(ctx)

		err := p.runToken(ctx, slot, token)
		handle.resolve(err)
	}()

	return handle, nil
}

// runToken executes token with panic recovery at the worker boundary: a
// panic is converted into a WorkerPanic error, the worker's status is set
// to Panicked, and the goroutine returns normally instead of propagating
// the panic up through the pool.
func (p *Pool) runToken(ctx context.Context, slot int, token WorkToken) (err error) {
	log := logger.FromContext(ctx).With("run_id", p.runID, "token_id", token.ID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("worker panicked", "recovered", fmt.Sprintf("%v", r))
			err = apperr.WorkerPanic(token.ID, r)
			p.markPanicked(slot, token.ID)
		}
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		p.metrics.recordTask(ctx, outcome)
		if err == nil {
			p.setStatus(slot, Idle())
		}
	}()

	return token.run(ctx)
}

func (p *Pool) claimSlot() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	slot := p.nextSlot
	p.nextSlot++
	return slot
}

func (p *Pool) setStatus(slot int, s Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[slot] = s
}

func (p *Pool) markPanicked(slot int, tokenID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[slot] = Panicked(tokenID)
	p.anyPanic = true
}

// Statuses returns a snapshot of every worker slot's current Status, keyed
// by slot index, for a progress UI to render.
func (p *Pool) Statuses() map[int]Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[int]Status, len(p.statuses))
	for k, v := range p.statuses {
		out[k] = v
	}
	return out
}

// AnyPanicked reports whether any worker has ever panicked during this
// pool's lifetime.
func (p *Pool) AnyPanicked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.anyPanic
}

// FinishJobs blocks until every submitted token currently running has
// completed (its WorkHandle has resolved), without closing the pool —
// more work may be submitted afterward.
func (p *Pool) FinishJobs() {
	p.wg.Wait()
}

// Join waits for every in-flight token to finish and reports whether any
// worker panicked during the pool's lifetime; callers typically treat a
// true return as cause to abort the run even if every individual token
// otherwise reported success.
func (p *Pool) Join() bool {
	p.wg.Wait()
	return p.AnyPanicked()
}

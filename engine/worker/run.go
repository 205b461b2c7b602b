package worker

import (
	"context"
	"errors"

	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/engine/plan"
	"github.com/assemble-build/assemble/pkg/apperr"
)

type taskResult struct {
	id  identifier.TaskID
	err error
}

// RunPlan drains pl through pool: every task the plan's Scheduler reports
// ready is submitted to pool as soon as it's ready, so independent branches
// of the plan execute concurrently rather than in lockstep waves. requestOrder
// is the command line's original task list, reused to rank explicitly
// requested tasks ahead of everything only pulled onto the critical path
// (see plan.NewScheduler).
//
// RunPlan returns the first task error encountered (wrapped via
// apperr.TaskFailed), but it does not stop submitting newly-ready work —
// per spec.md §4.8, a failed task only blocks its own RunAfter dependents;
// independent branches still run to completion so a single failure doesn't
// waste work already in flight elsewhere.
func RunPlan(ctx context.Context, pool *Pool, pl *plan.Plan, requestOrder []string) error {
	sched := plan.NewScheduler(pl, requestOrder)
	results := make(chan taskResult)
	inFlight := 0
	var firstErr error

	submitReady := func() {
		for {
			id, ok := sched.PopTask()
			if !ok {
				return
			}
			inFlight++
			go func(id identifier.TaskID) {
				results <- taskResult{id: id, err: runOne(ctx, pool, pl, id)}
			}(id)
		}
	}

	submitReady()
	for inFlight > 0 {
		res := <-results
		inFlight--
		sched.ReportTaskStatus(res.id, res.err == nil)
		if res.err != nil && firstErr == nil {
			firstErr = apperr.TaskFailed(res.id.String(), res.err)
		}
		submitReady()
	}

	pool.FinishJobs()
	if pool.AnyPanicked() && firstErr == nil {
		firstErr = errors.New("one or more workers panicked during execution")
	}
	return firstErr
}

// runOne looks up id's handle and submits its RunActions as a single
// WorkToken, blocking until that token's WorkHandle resolves.
func runOne(ctx context.Context, pool *Pool, pl *plan.Plan, id identifier.TaskID) error {
	handle, ok := pl.Handle(id)
	if !ok {
		return apperr.IdentifierNotFound(id.String())
	}
	h, err := pool.Submit(ctx, WorkToken{
		ID:   id.String(),
		Work: func(ctx context.Context) error { return handle.RunActions(ctx) },
	})
	if err != nil {
		return err
	}
	return h.Wait()
}

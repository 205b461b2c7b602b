package worker

import "context"

// WorkToken bundles one unit of work handed to a worker: an optional
// on_start hook (runs before work, e.g. to mark a task Running), the work
// itself, and an optional on_complete hook (runs after work regardless of
// outcome, e.g. to release a fingerprint lock). ID identifies the token for
// status reporting and log correlation; it is typically a task's
// identifier.TaskID string but the pool never parses it.
type WorkToken struct {
	ID         string
	OnStart    func(ctx context.Context) error
	Work       func(ctx context.Context) error
	OnComplete func(ctx context.Context, err error)
}

// run executes the token's on_start/work/on_complete sequence in order,
// short-circuiting to on_complete if on_start fails.
func (t WorkToken) run(ctx context.Context) error {
	var err error
	if t.OnStart != nil {
		err = t.OnStart(ctx)
	}
	if err == nil && t.Work != nil {
		err = t.Work(ctx)
	}
	if t.OnComplete != nil {
		t.OnComplete(ctx, err)
	}
	return err
}

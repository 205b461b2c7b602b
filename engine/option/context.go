package option

import "context"

type ctxKey string

const taskValuesCtxKey ctxKey = "assemble.option.task_values"

// PerTaskValues maps a TaskId's string form to the Values a CLI invocation
// slurped for that task's own tail, so one shared context can carry distinct
// option sets for every task in a single build.Run — a build's worker pool
// reuses one context.Context across every concurrently running task.
type PerTaskValues map[string]Values

// ContextWithTaskValues attaches the full per-task slurp result to ctx.
func ContextWithTaskValues(ctx context.Context, values PerTaskValues) context.Context {
	return context.WithValue(ctx, taskValuesCtxKey, values)
}

// ValuesForTask returns the Values slurped for taskID, or an empty Values if
// none were attached — a task invoked outside the CLI (e.g. directly from a
// test) simply sees no options rather than panicking.
func ValuesForTask(ctx context.Context, taskID string) Values {
	all, _ := ctx.Value(taskValuesCtxKey).(PerTaskValues)
	if all == nil {
		return Values{}
	}
	if v, ok := all[taskID]; ok {
		return v
	}
	return Values{}
}

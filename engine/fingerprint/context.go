package fingerprint

import "context"

type ctxKey string

const rerunCtxKey ctxKey = "assemble.fingerprint.rerun"

// ContextWithRerun marks ctx so RerunFromContext reports forced, letting a
// task's configure closure pass --rerun-tasks through to WorkHandler.Check
// without every task type threading its own force-rerun parameter.
func ContextWithRerun(ctx context.Context, forced bool) context.Context {
	return context.WithValue(ctx, rerunCtxKey, forced)
}

// RerunFromContext reports whether ctx carries a forced rerun, defaulting to
// false when absent.
func RerunFromContext(ctx context.Context) bool {
	forced, _ := ctx.Value(rerunCtxKey).(bool)
	return forced
}

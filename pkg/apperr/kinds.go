package apperr

import "fmt"

// InvalidIdentifier reports an identifier parse failure.
func InvalidIdentifier(raw string, cause error) *Error {
	return New(cause, CodeInvalidIdentifier, map[string]any{"identifier": raw})
}

// IdentifierNotFound reports a requested TaskId absent from a built graph —
// spec.md calls this "a bug in C8" when it surfaces out of the plan.
func IdentifierNotFound(id string) *Error {
	return Newf(CodeIdentifierNotFound, map[string]any{"id": id}, "identifier not found: %s", id)
}

// NoIdentifiersFound reports a shorthand that matched nothing.
func NoIdentifiersFound(shorthand string) *Error {
	return Newf(
		CodeNoIdentifiersFound,
		map[string]any{"shorthand": shorthand},
		"no task matches %q",
		shorthand,
	)
}

// TooManyIdentifiersFound reports an ambiguous shorthand match.
func TooManyIdentifiersFound(shorthand string, matches []string) *Error {
	return Newf(
		CodeTooManyIdentifiersFound,
		map[string]any{"shorthand": shorthand, "matches": matches},
		"%q matches %d tasks: %v",
		shorthand,
		len(matches),
		matches,
	)
}

// DuplicateTask reports a second registration of the same TaskId in one project.
func DuplicateTask(id string) *Error {
	return Newf(CodeDuplicateTask, map[string]any{"id": id}, "task already registered: %s", id)
}

// PropertyNotSet reports a fallible_get on an Unset Property.
func PropertyNotSet(name string) *Error {
	return Newf(CodePropertyNotSet, map[string]any{"property": name}, "property %q is not set", name)
}

// TypeMismatch reports a failed downcast of a Property or TaskHandle.
func TypeMismatch(want, got string) *Error {
	return Newf(
		CodeTypeMismatch,
		map[string]any{"want": want, "got": got},
		"type mismatch: want %s, got %s",
		want,
		got,
	)
}

// CycleFound reports a non-DAG execution plan.
func CycleFound(tasks []string) *Error {
	return Newf(CodeCycleFound, map[string]any{"tasks": tasks}, "cycle found among tasks: %v", tasks)
}

// AcquisitionError reports every registry in a dependency's intersection
// failing to resolve it.
func AcquisitionError(dependencyID string, cause error) *Error {
	e := New(cause, CodeAcquisitionError, map[string]any{"dependency_id": dependencyID})
	e.Message = fmt.Sprintf("could not acquire dependency %q: %s", dependencyID, e.Message)
	return e
}

// ConfigurationAlreadyResolved reports a mutation attempted on a resolved Configuration.
func ConfigurationAlreadyResolved(name string) *Error {
	return Newf(
		CodeConfigurationAlreadyResolved,
		map[string]any{"configuration": name},
		"configuration %q is already resolved",
		name,
	)
}

// StopTask signals early, successful task termination from within an action.
func StopTask() *Error {
	return New(nil, CodeStopTask, nil)
}

// StopAction signals skip-this-action-only from within an action.
func StopAction() *Error {
	return New(nil, CodeStopAction, nil)
}

// TaskFailed wraps any other failure raised inside a task action.
func TaskFailed(taskID string, cause error) *Error {
	e := New(cause, CodeTaskFailed, map[string]any{"task_id": taskID})
	e.Message = fmt.Sprintf("task %s failed: %s", taskID, e.Message)
	return e
}

// LockPoisonError reports a Property write cell poisoned by a panicked writer.
func LockPoisonError(property string) *Error {
	return Newf(
		CodeLockPoisonError,
		map[string]any{"property": property},
		"lock for property %q is poisoned",
		property,
	)
}

// NoSharedProjectSet reports a TaskHandle whose weak Project reference could
// not be upgraded because the project has been torn down.
func NoSharedProjectSet(taskID string) *Error {
	return Newf(
		CodeNoSharedProjectSet,
		map[string]any{"task_id": taskID},
		"no shared project set for task %s",
		taskID,
	)
}

// FingerprintStoreError reports a failure reading or writing a task's
// persisted work fingerprint record.
func FingerprintStoreError(taskID string, cause error) *Error {
	return New(cause, CodeFingerprintStoreError, map[string]any{"task_id": taskID})
}

// WorkerPanic reports that the worker executing taskID panicked mid-work;
// the work's WorkHandle resolves with this error instead of hanging forever.
func WorkerPanic(taskID string, recovered any) *Error {
	return Newf(
		CodeWorkerPanic,
		map[string]any{"task_id": taskID, "recovered": fmt.Sprintf("%v", recovered)},
		"worker for task %s panicked: %v",
		taskID,
		recovered,
	)
}

// UnknownOption reports a CLI flag that no declared option matches.
func UnknownOption(flag string) *Error {
	return Newf(CodeUnknownOption, map[string]any{"flag": flag}, "unknown option %q", flag)
}

// OptionDoesNotTakeValue reports a value given to a flag declared with no value.
func OptionDoesNotTakeValue(flag string) *Error {
	return Newf(
		CodeOptionDoesNotTakeValue,
		map[string]any{"flag": flag},
		"option %q does not take a value",
		flag,
	)
}

// OptionTakesValueButNoneProvided reports a value-taking flag given at the
// end of the CLI tail with nothing after it.
func OptionTakesValueButNoneProvided(flag string) *Error {
	return Newf(
		CodeOptionTakesValueButNoneGiven,
		map[string]any{"flag": flag},
		"option %q takes a value but none was provided",
		flag,
	)
}

// IsControlFlow reports whether err is a StopTask or StopAction signal —
// these must never propagate past the action dispatcher that raised them.
func IsControlFlow(err error) bool {
	e, ok := err.(*Error)
	return ok && e != nil && (e.Code == CodeStopTask || e.Code == CodeStopAction)
}

// IsControlFlowCode reports whether err is a control-flow signal of exactly
// the given code, letting a dispatcher distinguish StopAction from StopTask.
func IsControlFlowCode(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e != nil && e.Code == code
}

package task

import "github.com/assemble-build/assemble/engine/buildable"

// OrderingKind names one of the four edge kinds a task can declare against
// another Buildable during configuration.
type OrderingKind int

const (
	// DependsOn requires every TaskId the target expands to to complete
	// successfully before this task starts; those tasks are also pulled
	// into the execution graph.
	DependsOn OrderingKind = iota
	// FinalizedBy runs the target after this task terminates, regardless
	// of this task's outcome; the target is also pulled into the graph.
	FinalizedBy
	// RunsAfter orders this task after the target if the target is
	// independently part of the plan, without pulling it in.
	RunsAfter
	// RunsBefore orders this task before the target if the target is
	// independently part of the plan, without pulling it in.
	RunsBefore
)

func (k OrderingKind) String() string {
	switch k {
	case DependsOn:
		return "DependsOn"
	case FinalizedBy:
		return "FinalizedBy"
	case RunsAfter:
		return "RunsAfter"
	case RunsBefore:
		return "RunsBefore"
	default:
		return "Unknown"
	}
}

// Pulled reports whether graph construction (C8) must recursively configure
// and include the ordering's target, rather than merely reference it if it
// happens to already be in the plan.
func (k OrderingKind) Pulled() bool {
	return k == DependsOn || k == FinalizedBy
}

// Ordering is one declared edge from a task to a Buildable target.
type Ordering struct {
	Kind   OrderingKind
	Target buildable.Buildable
}

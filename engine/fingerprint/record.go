// Package fingerprint implements C7: per-task input/output digest records,
// persisted between runs, deciding whether a task's work can be skipped.
// Grounded on spec.md §4.6, digesting values the same way the teacher
// digests resources (engine/core.ETagFromAny's canonical-JSON-then-sha256
// recipe, generalized behind pkg/digest).
package fingerprint

import "time"

// InputEntry is one named input's digest at the time it was last observed.
type InputEntry struct {
	Name   string `json:"name"`
	Digest string `json:"digest"`
}

// OutputEntry is one named output file's path and digest.
type OutputEntry struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

// Record is the serialized work fingerprint for one task: everything
// needed to decide, on a later run, whether the task is up to date.
type Record struct {
	TaskID       string        `json:"task_id"`
	Inputs       []InputEntry  `json:"inputs"`
	Outputs      []OutputEntry `json:"outputs"`
	LastExecuted time.Time     `json:"last_executed"`
}

// sameInputsAndOutputs reports whether r and other carry identical input
// and output digests, ignoring LastExecuted — the comparison the
// up-to-date check actually needs.
func (r *Record) sameInputsAndOutputs(other *Record) bool {
	if other == nil {
		return false
	}
	if len(r.Inputs) != len(other.Inputs) || len(r.Outputs) != len(other.Outputs) {
		return false
	}
	for i, in := range r.Inputs {
		o := other.Inputs[i]
		if in.Name != o.Name || in.Digest != o.Digest {
			return false
		}
	}
	for i, out := range r.Outputs {
		o := other.Outputs[i]
		if out.Name != o.Name || out.Path != o.Path || out.Digest != o.Digest {
			return false
		}
	}
	return true
}

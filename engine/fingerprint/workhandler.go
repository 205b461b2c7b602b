package fingerprint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/pkg/digest"
)

// valueInput evaluates to a serializable value whose canonical-JSON digest
// becomes the input's recorded digest.
type valueInput func() (any, error)

// fileInput evaluates to one or more file paths whose content digest
// becomes the input's recorded digest (concatenated, in path order, when
// more than one path is registered under the same name).
type fileInput func() ([]string, error)

// outputSource evaluates to the file path an output was written to.
type outputSource func() (string, error)

// WorkHandler is the per-task IO registry every Executable owns: the set of
// named inputs and outputs whose digests decide whether the task's work can
// be skipped on a later run.
type WorkHandler struct {
	fs afero.Fs

	mu      sync.Mutex
	values  map[string]valueInput
	files   map[string]fileInput
	outputs map[string]outputSource

	// order preserves registration order so a Record's entries are
	// deterministic across runs, independent of Go's map iteration order.
	order       []string
	outputOrder []string
}

// NewWorkHandler builds an empty WorkHandler backed by fs (injectable so
// tests can use an in-memory filesystem).
func NewWorkHandler(fs afero.Fs) *WorkHandler {
	return &WorkHandler{
		fs:      fs,
		values:  make(map[string]valueInput),
		files:   make(map[string]fileInput),
		outputs: make(map[string]outputSource),
	}
}

// RegisterValueInput registers a named input evaluated as an arbitrary
// serializable value.
func (w *WorkHandler) RegisterValueInput(name string, eval func() (any, error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, dup := w.values[name]; !dup {
		if _, dup := w.files[name]; !dup {
			w.order = append(w.order, name)
		}
	}
	w.values[name] = eval
}

// RegisterFileInput registers a named input evaluated as a set of file
// paths digested by content.
func (w *WorkHandler) RegisterFileInput(name string, eval func() ([]string, error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, dup := w.values[name]; !dup {
		if _, dup := w.files[name]; !dup {
			w.order = append(w.order, name)
		}
	}
	w.files[name] = eval
}

// RegisterOutput registers a named output file path, digested by content
// after the task's work runs.
func (w *WorkHandler) RegisterOutput(name string, eval func() (string, error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, dup := w.outputs[name]; !dup {
		w.outputOrder = append(w.outputOrder, name)
	}
	w.outputs[name] = eval
}

// currentInputs evaluates every registered input and digests it, building
// the input half of the current Record — step 1 of the up-to-date check.
func (w *WorkHandler) currentInputs(d digest.Digester) ([]InputEntry, error) {
	w.mu.Lock()
	order := append([]string{}, w.order...)
	values := make(map[string]valueInput, len(w.values))
	for k, v := range w.values {
		values[k] = v
	}
	files := make(map[string]fileInput, len(w.files))
	for k, v := range w.files {
		files[k] = v
	}
	w.mu.Unlock()

	out := make([]InputEntry, 0, len(order))
	for _, name := range order {
		if eval, ok := values[name]; ok {
			v, err := eval()
			if err != nil {
				return nil, err
			}
			out = append(out, InputEntry{Name: name, Digest: digest.Value(v, d)})
			continue
		}
		eval := files[name]
		paths, err := eval()
		if err != nil {
			return nil, err
		}
		sorted := append([]string{}, paths...)
		sort.Strings(sorted)
		combined := ""
		for _, p := range sorted {
			fileDigest, err := digest.File(w.fs, p, d)
			if err != nil {
				return nil, err
			}
			combined += fileDigest
		}
		out = append(out, InputEntry{Name: name, Digest: d.Sum([]byte(combined))})
	}
	return out, nil
}

// currentOutputs digests every registered output file in registration
// order — called after a task's work has run.
func (w *WorkHandler) currentOutputs(d digest.Digester) ([]OutputEntry, error) {
	w.mu.Lock()
	order := append([]string{}, w.outputOrder...)
	outputs := make(map[string]outputSource, len(w.outputs))
	for k, v := range w.outputs {
		outputs[k] = v
	}
	w.mu.Unlock()

	out := make([]OutputEntry, 0, len(order))
	for _, name := range order {
		eval := outputs[name]
		path, err := eval()
		if err != nil {
			return nil, err
		}
		fileDigest, err := digest.File(w.fs, path, d)
		if err != nil {
			return nil, err
		}
		out = append(out, OutputEntry{Name: name, Path: path, Digest: fileDigest})
	}
	return out, nil
}

// UpToDateOverride, if supplied, is consulted after the digest comparison:
// returning false forces a re-run even though digests matched; returning
// true never overrides a digest mismatch into "up to date".
type UpToDateOverride func(ctx context.Context) (bool, error)

// Check runs the up-to-date algorithm from spec.md §4.6: it computes the
// current input record, loads the previous record from store, and reports
// whether the task's work can be skipped. rerunForced mirrors --rerun-tasks:
// when true, the task is never considered up to date regardless of digests.
func (w *WorkHandler) Check(
	ctx context.Context,
	store *Store,
	taskID identifier.TaskID,
	override UpToDateOverride,
	rerunForced bool,
	d digest.Digester,
) (upToDate bool, current *Record, err error) {
	if d == nil {
		d = digest.Default
	}

	inputs, err := w.currentInputs(d)
	if err != nil {
		return false, nil, err
	}
	current = &Record{TaskID: taskID.String(), Inputs: inputs}

	if rerunForced {
		return false, current, nil
	}

	previous, err := store.Load(taskID)
	if err != nil {
		return false, nil, err
	}
	if previous == nil {
		return false, current, nil
	}

	current.Outputs = previous.Outputs
	if !current.sameInputsAndOutputs(previous) {
		return false, current, nil
	}
	if !w.outputsStillMatch(previous.Outputs, d) {
		return false, current, nil
	}

	if override != nil {
		ok, err := override(ctx)
		if err != nil {
			return false, nil, err
		}
		if !ok {
			return false, current, nil
		}
	}
	return true, current, nil
}

// outputsStillMatch re-digests every previously recorded output file and
// reports whether every one still exists with a matching digest.
func (w *WorkHandler) outputsStillMatch(prior []OutputEntry, d digest.Digester) bool {
	for _, entry := range prior {
		exists, err := afero.Exists(w.fs, entry.Path)
		if err != nil || !exists {
			return false
		}
		got, err := digest.File(w.fs, entry.Path, d)
		if err != nil || got != entry.Digest {
			return false
		}
	}
	return true
}

// Commit is called after a task's work succeeds: it digests the registered
// outputs and atomically persists the final Record, replacing whatever was
// stored before. Never called if execution failed, so the previous record
// stays valid.
func (w *WorkHandler) Commit(
	ctx context.Context,
	store *Store,
	taskID identifier.TaskID,
	inputs []InputEntry,
	d digest.Digester,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d == nil {
		d = digest.Default
	}
	outputs, err := w.currentOutputs(d)
	if err != nil {
		return err
	}
	rec := &Record{
		TaskID:       taskID.String(),
		Inputs:       inputs,
		Outputs:      outputs,
		LastExecuted: time.Now(),
	}
	return store.Save(taskID, rec)
}

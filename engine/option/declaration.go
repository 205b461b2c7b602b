// Package option implements the per-task-type CLI flag surface dropped by
// spec.md's distillation but named in full at spec.md §6: each Task type may
// declare an OptionDeclarations describing its named flags, and an
// OptionsSlurper consumes a CLI tail against those declarations the same way
// a shell parses arguments, stopping at the first token that isn't a flag
// (treated as the next task name). No original_source file covers this
// concern directly; built from spec.md §6's own wording, following the
// teacher's validator-backed struct-validation idiom (cli/helpers/workflow.go)
// for declaration-time sanity checks.
package option

import (
	"github.com/go-playground/validator/v10"

	"github.com/assemble-build/assemble/pkg/apperr"
)

// ValueParser converts a raw string token into a typed value. Declarations
// that don't need a custom type can leave this nil; the slurper then stores
// the raw string.
type ValueParser func(raw string) (any, error)

// Declaration describes one named flag a task type accepts.
type Declaration struct {
	Name                string `validate:"required"`
	Help                string
	TakesValue          bool
	AllowMultipleValues bool
	Optional            bool
	Parser              ValueParser
}

// Declarations is an ordered, named set of flags one task type accepts.
// Order is preserved for help-text rendering; lookups are by name.
type Declarations struct {
	order  []string
	byName map[string]Declaration
}

// NewDeclarations validates and indexes decls, rejecting a duplicate flag
// name or a Declaration.Name that fails struct validation.
func NewDeclarations(decls ...Declaration) (*Declarations, error) {
	v := validator.New()
	d := &Declarations{byName: make(map[string]Declaration, len(decls))}
	for _, decl := range decls {
		if err := v.Struct(decl); err != nil {
			return nil, apperr.New(err, apperr.CodeInvalidIdentifier, map[string]any{"option": decl.Name})
		}
		if _, exists := d.byName[decl.Name]; exists {
			return nil, apperr.Newf(
				apperr.CodeDuplicateTask,
				map[string]any{"option": decl.Name},
				"option %q declared twice",
				decl.Name,
			)
		}
		d.byName[decl.Name] = decl
		d.order = append(d.order, decl.Name)
	}
	return d, nil
}

// Lookup returns the declaration for name, if any.
func (d *Declarations) Lookup(name string) (Declaration, bool) {
	decl, ok := d.byName[name]
	return decl, ok
}

// Names returns the declared flag names in declaration order.
func (d *Declarations) Names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

package cli

import (
	"github.com/assemble-build/assemble/engine/option"
	"github.com/assemble-build/assemble/engine/project"
)

// DeclarationsLookup resolves a registered task's static type name (as
// reported by task.AnyTaskHandle.TypeName) to the Declarations describing
// its CLI option tail. A type with nothing declared should return
// (nil, false); ResolveTaskOptions then treats any flag-looking token
// following that task as an unknown option rather than silently absorbing
// it into the next task's name.
type DeclarationsLookup func(typeName string) (*option.Declarations, bool)

var emptyDeclarations = mustEmptyDeclarations()

func mustEmptyDeclarations() *option.Declarations {
	decls, err := option.NewDeclarations()
	if err != nil {
		panic(err)
	}
	return decls
}

// ResolveTaskOptions walks the remainder of argv left over after
// ParseGlobalFlags strips the fixed global flags: a sequence of task
// shorthand names each optionally followed by its own "--flag value" tail.
// It must run after the project tree is fully built (settings phase +
// RegisterTasks) because each task's Declarations depend on the concrete
// TaskHandle's registered TypeName — a CLI flag's meaning is only known
// once its owning task type is known.
//
// It returns the resolved task shorthand in request order plus the Values
// slurped for each, keyed by that task's full TaskId string, ready to pass
// as build.Options.Requested and build.Options.TaskOptions.
func ResolveTaskOptions(proj *project.Project, lookup DeclarationsLookup, tail []string) ([]string, option.PerTaskValues, error) {
	requested := make([]string, 0, len(tail))
	values := make(option.PerTaskValues)

	pos := 0
	for pos < len(tail) {
		shorthand := tail[pos]
		pos++

		id, err := proj.FindTaskID(shorthand)
		if err != nil {
			return nil, nil, err
		}
		requested = append(requested, shorthand)

		handle, ok := proj.LookupTask(id)
		if !ok {
			continue
		}

		decls, ok := lookup(handle.TypeName())
		if !ok || decls == nil {
			decls = emptyDeclarations
		}

		consumed, taskValues, err := option.Slurp(decls, tail[pos:])
		if err != nil {
			return nil, nil, err
		}
		pos += consumed
		if len(taskValues) > 0 {
			values[id.String()] = taskValues
		}
	}

	return requested, values, nil
}

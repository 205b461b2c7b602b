// Command assemble is the reference build for this tool: a small but real
// project graph (compile -> test -> check, with build depending on check)
// wired from the built-in Copy and Exec task types, demonstrating
// everything the cli package exposes — global flags, project properties,
// and per-task option tails.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/assemble-build/assemble/cli"
	"github.com/assemble-build/assemble/engine/buildable"
	"github.com/assemble-build/assemble/engine/fingerprint"
	"github.com/assemble-build/assemble/engine/option"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/settings"
	"github.com/assemble-build/assemble/engine/tasks"
)

func main() {
	fs := afero.NewOsFs()
	store, err := fingerprint.NewStore(fs, fingerprintCacheDir(), 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	def := cli.BuildDefinition{
		RootName:      "app",
		Configure:     configure,
		RegisterTasks: registerTasks(fs, store),
		Declarations:  declarationsFor,
	}

	root := cli.NewRootCommand(def)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fingerprintCacheDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ".assemble-home/cache/fingerprints"
	}
	return cwd + "/.assemble-home/cache/fingerprints"
}

// configure declares this project's subprojects. The reference build is a
// single-project build, so there's nothing to include.
func configure(*settings.Settings) error { return nil }

// registerTasks wires the compile -> test -> check -> build chain every
// S1-S5 testable property in spec.md §8 is a smaller instance of.
func registerTasks(fs afero.Fs, store *fingerprint.Store) func(root *project.Project) error {
	return func(root *project.Project) error {
		compile, err := tasks.RegisterCopy(root.Tasks(), root, "compile", fs, store, tasks.Copy{
			From: "src/main.go",
			Into: "build/main.go",
		})
		if err != nil {
			return err
		}

		test, err := tasks.RegisterExec(root.Tasks(), root, "test", tasks.Exec{
			Command: "go",
			Args:    []string{"test", "./..."},
		})
		if err != nil {
			return err
		}
		test.DependsOn(buildable.Self(compile.ID()))

		check, err := tasks.RegisterExec(root.Tasks(), root, "check", tasks.Exec{
			Command: "go",
			Args:    []string{"vet", "./..."},
		})
		if err != nil {
			return err
		}
		check.DependsOn(buildable.Self(test.ID()))

		build, err := tasks.RegisterExec(root.Tasks(), root, "build", tasks.Exec{
			Command: "go",
			Args:    []string{"build", "./..."},
		})
		if err != nil {
			return err
		}
		build.DependsOn(buildable.Self(check.ID()))

		return nil
	}
}

// declarationsFor exposes Exec's optional "args" override: `assemble test
// --args "-run TestFoo"` reruns the test task with a narrower test filter
// without editing the registration above.
func declarationsFor(typeName string) (*option.Declarations, bool) {
	if typeName != "Exec" {
		return nil, false
	}
	decls, err := option.NewDeclarations(option.Declaration{
		Name:                "args",
		TakesValue:          true,
		Optional:            true,
		AllowMultipleValues: true,
	})
	if err != nil {
		return nil, false
	}
	return decls, true
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/assemble-build/assemble/engine/build"
	"github.com/assemble-build/assemble/engine/option"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/engine/settings"
	"github.com/assemble-build/assemble/pkg/apperr"
	"github.com/assemble-build/assemble/pkg/config"
	"github.com/assemble-build/assemble/pkg/logger"
)

// version is set at build time via -ldflags; there's no teacher pkg/version
// to adapt (the retrieval pack never included one for this tool), so this
// build carries its own minimal constant instead of inventing that package
// from nothing.
var version = "dev"

// BuildDefinition is everything a concrete Assemble binary supplies to the
// generic CLI: how its project tree is declared and its tasks registered,
// and how to find the Declarations for a registered task type so its CLI
// option tail can be parsed. This is the "opaque producer" a script-language
// front end would otherwise supply dynamically — out of scope per spec.md
// §1, so here it's a fixed Go value the binary's own main package builds.
type BuildDefinition struct {
	RootName      string
	RootDir       string
	Configure     settings.Configure
	RegisterTasks func(root *project.Project) error
	Declarations  DeclarationsLookup

	// FS overrides the filesystem project discovery and task work run
	// against. Nil means afero.NewOsFs() — a real build. Tests supply an
	// in-memory afero.Fs instead.
	FS afero.Fs
}

// NewRootCommand builds the single cobra command this CLI exposes: TASK
// [OPTIONS]... positional invocation plus the global flags GlobalFlags
// describes. Flag parsing is disabled on the cobra command itself
// (DisableFlagParsing) since cobra's static flag declarations can't express
// a per-task-type option tail; ParseGlobalFlags and ResolveTaskOptions do
// that work by hand, the way the teacher's SetupGlobalConfig wires cobra's
// flags into pkg/config, but adapted for a flag surface that isn't known
// until the project tree is built.
func NewRootCommand(def BuildDefinition) *cobra.Command {
	return &cobra.Command{
		Use:                "assemble TASK [OPTIONS]...",
		Short:              "Assemble build automation tool",
		Version:            version,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), def, args)
		},
	}
}

func run(ctx context.Context, def BuildDefinition, argv []string) error {
	globals, taskArgs, err := ParseGlobalFlags(argv)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	if err := loadEnvironmentFile(cwd, ""); err != nil {
		return err
	}

	cfg, err := loadConfig(ctx, globals)
	if err != nil {
		return err
	}

	lg := logger.NewLogger(&logger.Config{
		Level:  globals.LogLevel,
		Output: os.Stdout,
		JSON:   cfg.LogJSON,
	})
	ctx = logger.ContextWithLogger(ctx, lg)

	fs := def.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	rootDir := def.RootDir
	if rootDir == "" {
		rootDir = cwd
	}

	buildOpts := build.Options{
		FS:                fs,
		RootName:          def.RootName,
		RootDir:           rootDir,
		Configure:         def.Configure,
		RegisterTasks:     def.RegisterTasks,
		ProjectProperties: globals.Properties,
	}
	proj, err := build.Discover(buildOpts)
	if err != nil {
		return renderErr(err, globals)
	}

	lookup := def.Declarations
	if lookup == nil {
		lookup = func(string) (*option.Declarations, bool) { return nil, false }
	}
	requested, taskOptions, err := ResolveTaskOptions(proj, lookup, taskArgs)
	if err != nil {
		return renderErr(err, globals)
	}
	if len(requested) == 0 {
		return apperr.Newf(apperr.CodeNoIdentifiersFound, nil, "no task requested")
	}

	workers := globals.EffectiveWorkers()
	if workers == 0 {
		workers = cfg.Workers
	}

	buildOpts.Requested = requested
	buildOpts.TaskOptions = taskOptions
	buildOpts.WorkerCount = workers
	buildOpts.RerunTasks = globals.RerunTasks || cfg.RerunTasks

	if _, err := build.Execute(ctx, proj, buildOpts); err != nil {
		return renderErr(err, globals)
	}
	return nil
}

func loadConfig(ctx context.Context, globals GlobalFlags) (*config.Config, error) {
	cliValues := map[string]any{}
	if w := globals.EffectiveWorkers(); w != 0 {
		cliValues["workers"] = w
	}
	if globals.RerunTasks {
		cliValues["rerun_tasks"] = true
	}
	if globals.Console != "" {
		cliValues["console"] = globals.Console
	}
	if globals.LogLevel != "" {
		cliValues["log_level"] = string(globals.LogLevel)
	}

	sources := []config.Source{config.NewDefaultProvider(), config.NewEnvProvider()}
	if len(cliValues) > 0 {
		sources = append(sources, config.NewCLIProvider(cliValues))
	}

	mgr := config.NewManager()
	return mgr.Load(ctx, sources...)
}

func renderErr(err error, globals GlobalFlags) error {
	return fmt.Errorf("%s", apperr.Render(err, globals.BacktraceMode()))
}

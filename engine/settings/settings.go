// Package settings implements the two-phase settings evaluation dropped by
// spec.md's distillation but present in the original assemble-core: before
// any task registration runs, a Settings pass locates every declared
// subproject and builds the root Project plus its children. Grounded on
// `original_source/crates/assemble-core/src/startup/initialization/
// settings.rs` (the `Settings`/`include`/`include_all`/`find_project` API)
// and `project/finder.rs` (locating a declared project's directory on
// disk), simplified to the pieces this build tool actually needs: no
// plugin manager, no global `Assemble` handle, just "what subprojects
// exist and where do they live".
package settings

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/engine/project"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// ProjectDescriptor is a declared subproject: its path within the project
// tree (colon-separated, matching identifier segment rules, e.g.
// "libs:core"), and an optional build-file name override.
type ProjectDescriptor struct {
	Path          string
	BuildFileName string
}

// Settings is populated by a Configure function before DiscoverProjects
// builds the real project.Project tree — the "locate" phase of the
// original's two-phase settings evaluation.
type Settings struct {
	fs                   afero.Fs
	rootName             string
	rootDir              string
	settingsFile         string
	defaultBuildFileName string
	descriptors          map[string]*ProjectDescriptor
	order                []string
}

// Configure is a user-supplied callback that declares the project tree by
// calling Include/IncludeAll/SetBuildFileName on s — the Go analogue of
// evaluating a settings script.
type Configure func(s *Settings) error

func newSettings(fs afero.Fs, rootName, rootDir, settingsFile string) *Settings {
	return &Settings{
		fs:           fs,
		rootName:     rootName,
		rootDir:      rootDir,
		settingsFile: settingsFile,
		descriptors:  make(map[string]*ProjectDescriptor),
	}
}

// RootDir returns the workspace root directory this Settings was built for.
func (s *Settings) RootDir() string { return s.rootDir }

// SettingsFile returns the path of the settings file that produced this
// Settings instance (empty if DiscoverProjects was called without one).
func (s *Settings) SettingsFile() string { return s.settingsFile }

// SetBuildFileName overrides the default build-file name every declared
// subproject is checked for, unless the subproject's own descriptor
// overrides it again.
func (s *Settings) SetBuildFileName(name string) { s.defaultBuildFileName = name }

// Include declares a single subproject at path, using the default build
// file name.
func (s *Settings) Include(path string) {
	s.addDescriptor(&ProjectDescriptor{Path: path})
}

// IncludeAll declares several subprojects at once.
func (s *Settings) IncludeAll(paths ...string) {
	for _, path := range paths {
		s.Include(path)
	}
}

// IncludeWithBuildFile declares a subproject whose build file differs from
// the tree's default.
func (s *Settings) IncludeWithBuildFile(path, buildFileName string) {
	s.addDescriptor(&ProjectDescriptor{Path: path, BuildFileName: buildFileName})
}

func (s *Settings) addDescriptor(d *ProjectDescriptor) {
	if _, exists := s.descriptors[d.Path]; exists {
		return // re-declaring the same path is a no-op, not an error
	}
	s.descriptors[d.Path] = d
	s.order = append(s.order, d.Path)
}

// FindProject returns the descriptor declared at path, if any.
func (s *Settings) FindProject(path string) (*ProjectDescriptor, bool) {
	d, ok := s.descriptors[path]
	return d, ok
}

// buildFileNameFor resolves the effective build-file name for a descriptor,
// falling back to the tree-wide default.
func (s *Settings) buildFileNameFor(d *ProjectDescriptor) string {
	if d.BuildFileName != "" {
		return d.BuildFileName
	}
	return s.defaultBuildFileName
}

// DiscoverProjects runs configure to populate a fresh Settings rooted at
// rootDir (accessed through fs, so this is testable against an in-memory
// filesystem), then walks the declared descriptors and builds the real
// project.Project tree: one project.NewRoot plus one EnsureChild per path
// segment per descriptor. Every declared subproject directory is verified
// to exist on fs; if defaultBuildFileName (or a descriptor's own override)
// is set, that subproject's build file is verified to exist too. This is
// the locate phase that must complete before any task registration begins
// (spec.md §5 phase 2), matching assemble-core's Settings/ProjectFinder
// split.
func DiscoverProjects(fs afero.Fs, rootName, rootDir string, configure Configure) (*project.Project, error) {
	s := newSettings(fs, rootName, rootDir, "")
	if configure != nil {
		if err := configure(s); err != nil {
			return nil, err
		}
	}

	root, err := project.NewRoot(rootName, rootDir)
	if err != nil {
		return nil, err
	}

	for _, path := range s.order {
		desc := s.descriptors[path]
		if err := verifyAndAttach(fs, s, root, desc); err != nil {
			return nil, err
		}
	}

	return root, nil
}

func verifyAndAttach(fs afero.Fs, s *Settings, root *project.Project, desc *ProjectDescriptor) error {
	if !identifier.IsValid(desc.Path) {
		return apperr.InvalidIdentifier(desc.Path, nil)
	}

	dirAbs := filepath.Join(s.rootDir, filepath.FromSlash(strings.ReplaceAll(desc.Path, identifier.Separator, "/")))
	info, err := fs.Stat(dirAbs)
	if err != nil || !info.IsDir() {
		return apperr.Newf(
			apperr.CodeIdentifierNotFound,
			map[string]any{"path": desc.Path, "dir": dirAbs},
			"declared subproject %q not found at %s", desc.Path, dirAbs,
		)
	}

	if buildFile := s.buildFileNameFor(desc); buildFile != "" {
		buildFileAbs := filepath.Join(dirAbs, buildFile)
		if ok, _ := afero.Exists(fs, buildFileAbs); !ok {
			return apperr.Newf(
				apperr.CodeIdentifierNotFound,
				map[string]any{"path": desc.Path, "build_file": buildFileAbs},
				"subproject %q has no build file at %s", desc.Path, buildFileAbs,
			)
		}
	}

	cur := root
	for _, seg := range strings.Split(desc.Path, identifier.Separator) {
		if seg == "" {
			continue
		}
		child, err := cur.EnsureChild(seg)
		if err != nil {
			return err
		}
		cur = child
	}
	return nil
}

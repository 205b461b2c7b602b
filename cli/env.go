package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// loadEnvironmentFile loads envFile (default ".env", resolved relative to
// cwd) into the process environment before configuration is resolved, with
// the same directory-traversal guard the teacher's equivalent helper
// applies: the resolved path must stay within cwd. A missing file is not an
// error — an env file is always optional.
func loadEnvironmentFile(cwd, envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if !filepath.IsAbs(envFile) {
		envFile = filepath.Join(cwd, envFile)
	}

	absPath, err := filepath.Abs(filepath.Clean(envFile))
	if err != nil {
		return fmt.Errorf("resolving env file path: %w", err)
	}
	if !isWithinDirectory(absPath, cwd) {
		return fmt.Errorf("env file path %q is outside the project directory", envFile)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("statting env file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("env file path %q is not a regular file", envFile)
	}

	if err := godotenv.Load(absPath); err != nil {
		return fmt.Errorf("loading env file %s: %w", absPath, err)
	}
	return nil
}

func isWithinDirectory(path, dir string) bool {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

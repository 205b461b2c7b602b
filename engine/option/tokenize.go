package option

import (
	"fmt"

	"github.com/google/shlex"
)

// Tokenize splits a raw CLI tail (e.g. the remainder of os.Args after the
// program name, or one shell-quoted line) into tokens the same way a shell
// would, so a quoted per-task option value like --message "release notes"
// survives as one token instead of splitting on the inner space. Unlike
// Slurp's errors, a malformed quote here isn't part of the option error
// taxonomy in spec.md §6 — it's an input-formatting mistake the caller (the
// CLI's argv parser) reports directly.
func Tokenize(tail string) ([]string, error) {
	tokens, err := shlex.Split(tail)
	if err != nil {
		return nil, fmt.Errorf("tokenizing option tail %q: %w", tail, err)
	}
	return tokens, nil
}

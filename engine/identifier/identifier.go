// Package identifier implements C1: hierarchical, colon-separated names for
// projects, tasks, and properties. Values are pure, cloneable (Go values
// copy by assignment already), orderable, and parseable. Grounded on the
// original assemble-core::identifier::Id (`_examples/original_source/crates/
// assemble-core/src/identifier.rs`) and on the teacher's plain string-key
// idiom for the same concept (engine/autoload's type/id registry keys).
package identifier

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/assemble-build/assemble/pkg/apperr"
)

// Separator is the delimiter between segments of an Identifier.
const Separator = ":"

var segmentPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ID is a colon-separated, non-empty sequence of segments. It is the
// canonical key for tasks, properties, and projects.
type ID struct {
	segments []string
	absolute bool
}

// Parse splits s on Separator and validates every segment. A leading ":"
// marks the identifier absolute (rooted); it is otherwise optional.
func Parse(s string) (ID, error) {
	absolute := strings.HasPrefix(s, Separator)
	trimmed := strings.TrimPrefix(s, Separator)
	if trimmed == "" {
		return ID{}, apperr.InvalidIdentifier(s, nil)
	}
	parts := strings.Split(trimmed, Separator)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if !segmentPattern.MatchString(p) {
			return ID{}, apperr.InvalidIdentifier(s, nil)
		}
		segments = append(segments, p)
	}
	return ID{segments: segments, absolute: absolute}, nil
}

// MustParse is Parse but panics on error; reserved for compile-time-known
// literal identifiers (e.g. in tests and defaults).
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Join concatenates parent and a single child segment, preserving the
// parent's absoluteness.
func Join(parent ID, child string) (ID, error) {
	if !segmentPattern.MatchString(child) {
		return ID{}, apperr.InvalidIdentifier(child, nil)
	}
	segments := make([]string, len(parent.segments), len(parent.segments)+1)
	copy(segments, parent.segments)
	segments = append(segments, child)
	return ID{segments: segments, absolute: parent.absolute}, nil
}

// IsValid reports whether s parses as an Identifier.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String renders the identifier, with a leading ":" when absolute.
func (id ID) String() string {
	joined := strings.Join(id.segments, Separator)
	if id.absolute {
		return Separator + joined
	}
	return joined
}

// MarshalText implements encoding.TextMarshaler so an ID can serve as a flat
// map key during fingerprint/config serialization.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Segments returns a copy of the identifier's path segments.
func (id ID) Segments() []string {
	out := make([]string, len(id.segments))
	copy(out, id.segments)
	return out
}

// Absolute reports whether the identifier was parsed (or constructed) with a
// leading ":".
func (id ID) Absolute() bool {
	return id.absolute
}

// IsZero reports whether id is the unparsed zero value.
func (id ID) IsZero() bool {
	return len(id.segments) == 0
}

// Last returns the final (terminal) segment.
func (id ID) Last() string {
	if len(id.segments) == 0 {
		return ""
	}
	return id.segments[len(id.segments)-1]
}

// Parent returns the identifier with its terminal segment removed, and
// whether a parent exists (the root has none).
func (id ID) Parent() (ID, bool) {
	if len(id.segments) <= 1 {
		return ID{}, false
	}
	return ID{segments: id.segments[:len(id.segments)-1], absolute: id.absolute}, true
}

// Ancestors yields id, its parent, its parent's parent, ..., down to the root.
func (id ID) Ancestors() []ID {
	out := []ID{id}
	cur := id
	for {
		parent, ok := cur.Parent()
		if !ok {
			break
		}
		out = append(out, parent)
		cur = parent
	}
	return out
}

// Equal reports structural equality.
func (id ID) Equal(other ID) bool {
	if id.absolute != other.absolute || len(id.segments) != len(other.segments) {
		return false
	}
	for i := range id.segments {
		if id.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// Less provides a total, deterministic order for sorting IDs (e.g. stable
// fingerprint cache directory listings, deterministic error messages).
func (id ID) Less(other ID) bool {
	return id.String() < other.String()
}

// IsShorthand reports whether candidate matches id as a suffix, segment by
// segment from the right — e.g. "a:b" matches "root:x:a:b".
func (id ID) IsShorthand(candidate string) bool {
	cand, err := Parse(candidate)
	if err != nil {
		return false
	}
	if len(cand.segments) > len(id.segments) {
		return false
	}
	offset := len(id.segments) - len(cand.segments)
	for i, seg := range cand.segments {
		if id.segments[offset+i] != seg {
			return false
		}
	}
	return true
}

// AsPath joins the identifier's segments with the native OS path separator —
// used to derive the on-disk fingerprint cache path for a TaskId (§6).
func (id ID) AsPath() string {
	return filepath.Join(id.segments...)
}
